package exporter

import (
	"log/slog"
	"sort"

	"scorecli/internal/config"
	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// RecordExporter writes a record set back to CSV using the layout the parser
// reads: Student, Semester, subject columns, then attribute columns.
type RecordExporter struct {
	csv    *CSVWriter
	paths  *config.Paths
	logger *slog.Logger
}

// NewRecordExporter creates a record exporter
func NewRecordExporter(logger *slog.Logger, paths *config.Paths) *RecordExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordExporter{
		csv:    NewCSVWriter(logger, paths),
		paths:  paths,
		logger: logger.With(slog.String("component", "record_exporter")),
	}
}

// Write writes rs to path with a UTF-8 BOM. An empty path writes to the
// cleaned scores file.
func (e *RecordExporter) Write(path string, rs *domain.RecordSet) (string, error) {
	if path == "" {
		path = config.CleanedScoresCSVName
		if e.paths != nil {
			path = e.paths.CleanedScoresCSV
		}
	}

	attrs := attributeColumns(rs)
	headers := append([]string{"Student", "Semester"}, rs.Columns...)
	headers = append(headers, attrs...)

	records := make([][]string, 0, rs.Len())
	for _, r := range rs.Records {
		row := make([]string, 0, len(headers))
		row = append(row, r.Student, r.Semester)
		for _, c := range rs.Columns {
			if v, ok := r.Scores[c]; ok {
				row = append(row, formatRaw(v))
			} else {
				row = append(row, "")
			}
		}
		for _, a := range attrs {
			row = append(row, r.Attributes[a])
		}
		records = append(records, row)
	}

	if err := e.csv.WriteCSV(path, WriteOptions{Headers: headers, Records: records, BOMPrefix: true}); err != nil {
		return "", errors.NewStorageError("failed to write records", err).WithContext("path", path)
	}

	full := e.csv.resolvePath(path)
	e.logger.Info("Records exported",
		slog.String("path", full),
		slog.Int("records", len(records)))
	return full, nil
}

func attributeColumns(rs *domain.RecordSet) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records {
		for k := range r.Attributes {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
