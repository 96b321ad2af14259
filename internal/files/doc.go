// Package files finds and checks score sources on disk.
//
// Discovery lists the workbooks (.xlsx, .xlsm) and CSV files of a directory,
// skipping Excel lock files and the files the tools generate themselves.
// SourceValidator checks a single source before it is parsed so a missing or
// unsupported file fails with a typed error instead of a parser error.
package files
