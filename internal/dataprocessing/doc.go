// Package dataprocessing reads student score tables and prepares them for
// analysis.
//
// # Architecture
//
// The package is organized into two components:
//
// 1. Parser: reads Excel workbooks and CSV files into a domain.RecordSet
// 2. Cleaner: removes duplicate rows and handles empty score cells
//
// # Usage
//
//	p := dataprocessing.NewParser(logger, dataprocessing.ParseOptions{})
//	rs, err := p.ParseFile(ctx, "student_scores.xlsx")
//	if err != nil {
//	    return err
//	}
//	cleaned := dataprocessing.NewCleaner(logger, rs).DropMissing()
//
// # Schema Inspection
//
// The header row is the first row naming both the Student and Semester
// columns. Every other column whose non-empty cells all parse as numbers
// becomes a subject column; the remaining columns are kept as record
// attributes. Empty cells and the usual missing markers (NA, NaN, null)
// are read as missing scores.
//
// # Error Handling
//
// Unreadable input yields a PARSING error carrying the file name; a row
// without a student or semester, or with a negative score, yields a
// VALIDATION error carrying the line number.
package dataprocessing
