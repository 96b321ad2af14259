// Package exporter writes analysis results and score tables to disk.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// appending, and UTF-8 BOM for Excel compatibility.
//
// SummaryExporter: Persists the semester by subject averages table as CSV or
// as an Excel workbook. It implements analyzer.SummaryWriter.
//
// RecordExporter: Writes a (cleaned) record set back to CSV in the same
// layout the parser reads.
//
// Example usage:
//
//	summary := exporter.NewSummaryExporter(logger, paths, exporter.FormatXLSX)
//	err := a.PersistSemesterAverages(ctx, summary)
package exporter
