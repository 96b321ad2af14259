// Package analyzer computes descriptive and trend statistics over a set of
// student score records.
//
// An Analyzer is built once from a domain.RecordSet and never mutates it.
// Every query is a pure function of the records and the options supplied at
// construction, so a single Analyzer may be shared by concurrent readers.
//
// # Numeric columns
//
// The analyzed subjects are either fixed by AnalysisOptions.Subjects or taken
// from the record set schema. A fixed subject missing from the schema fails
// construction with a MISSING_COLUMN error; an empty column list fails with a
// CONFIG error.
//
// # Usage
//
//	a, err := analyzer.New(records, domain.DefaultAnalysisOptions())
//	if err != nil {
//	    return err
//	}
//	failed := a.StudentsWhoFailed()
//	improved := a.StudentsWhoImproved()
//
// # Improvement
//
// A student improved when their per-semester averages, ordered by semester,
// form a sequence of more than one value that never decreases. Averages are
// compared after rounding to Precision. With StrictImprovement every average
// must exceed its predecessor.
package analyzer
