package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"scorecli/internal/config"
	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// Format selects the summary file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat converts a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	}
	return "", errors.NewConfigError(fmt.Sprintf("unsupported export format %q", s), nil).
		WithContext("format", s)
}

// SummaryExporter writes the semester averages table. It satisfies
// analyzer.SummaryWriter.
type SummaryExporter struct {
	csv    *CSVWriter
	paths  *config.Paths
	format Format
	sheet  string
	logger *slog.Logger

	// LastPath is the file written by the most recent WriteSemesterAverages call
	LastPath string
}

// NewSummaryExporter creates a summary exporter for the given format
func NewSummaryExporter(logger *slog.Logger, paths *config.Paths, format Format) *SummaryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryExporter{
		csv:    NewCSVWriter(logger, paths),
		paths:  paths,
		format: format,
		sheet:  config.DefaultSemesterSheetName,
		logger: logger.With(slog.String("component", "summary_exporter")),
	}
}

// WriteSemesterAverages writes the table to the well-known path for the
// configured format
func (e *SummaryExporter) WriteSemesterAverages(ctx context.Context, columns []string, rows []domain.SemesterAverage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var path string
	var err error
	switch e.format {
	case FormatXLSX:
		path = config.SemesterAverageXLSXName
		if e.paths != nil {
			path = e.paths.SemesterAverageXLSX
		}
		err = e.WriteXLSX(path, columns, rows)
	default:
		path = config.SemesterAverageCSVName
		if e.paths != nil {
			path = e.paths.SemesterAverageCSV
		}
		err = e.WriteCSV(path, columns, rows)
	}
	if err != nil {
		return err
	}

	e.LastPath = path
	e.logger.InfoContext(ctx, "Semester averages exported",
		slog.String("path", path),
		slog.String("format", string(e.format)),
		slog.Int("semesters", len(rows)))
	return nil
}

// WriteCSV writes the table as CSV with columns Semester, <subjects...>
func (e *SummaryExporter) WriteCSV(path string, columns []string, rows []domain.SemesterAverage) error {
	headers, records := e.table(columns, rows)
	if err := e.csv.WriteCSV(path, WriteOptions{Headers: headers, Records: records}); err != nil {
		return errors.NewStorageError("failed to write semester averages", err).WithContext("path", path)
	}
	return nil
}

// WriteXLSX writes the table to a workbook with a single sheet
func (e *SummaryExporter) WriteXLSX(path string, columns []string, rows []domain.SemesterAverage) error {
	path = e.csv.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return errors.NewStorageError("failed to create report directory", err).WithContext("path", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), e.sheet); err != nil {
		return errors.NewStorageError("failed to name sheet", err)
	}

	header := make([]interface{}, 0, len(columns)+1)
	header = append(header, "Semester")
	for _, c := range columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return errors.NewStorageError("failed to write header row", err)
	}

	for i, row := range rows {
		values := make([]interface{}, 0, len(columns)+1)
		values = append(values, row.Semester)
		for _, c := range columns {
			v, ok := row.Averages[c]
			if !ok {
				values = append(values, nil)
				continue
			}
			values = append(values, v)
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to compute cell reference", err)
		}
		if err := f.SetSheetRow(e.sheet, cellRef, &values); err != nil {
			return errors.NewStorageError("failed to write row", err).WithContext("semester", row.Semester)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func (e *SummaryExporter) table(columns []string, rows []domain.SemesterAverage) ([]string, [][]string) {
	headers := append([]string{"Semester"}, columns...)
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := make([]string, 0, len(headers))
		rec = append(rec, row.Semester)
		for _, c := range columns {
			v, ok := row.Averages[c]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, formatRaw(v))
		}
		records = append(records, rec)
	}
	return headers, records
}
