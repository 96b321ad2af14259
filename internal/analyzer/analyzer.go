package analyzer

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

var (
	// ErrNoNumericColumns is wrapped by the CONFIG error returned when no
	// subject column is available for analysis.
	ErrNoNumericColumns = stderrors.New("no numeric columns")

	// ErrMissingColumn is wrapped by every MISSING_COLUMN error.
	ErrMissingColumn = stderrors.New("missing column")
)

var validate = validator.New()

// Analyzer answers statistical queries over an immutable record set.
type Analyzer struct {
	records []domain.Record
	columns []string
	opts    domain.AnalysisOptions
}

// New builds an Analyzer over rs. The record set is copied, so later changes
// to rs are not observed.
func New(rs *domain.RecordSet, opts domain.AnalysisOptions) (*Analyzer, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, errors.NewConfigError("invalid analysis options", err)
	}

	var schema []string
	var records []domain.Record
	if rs != nil {
		schema = rs.Columns
		records = rs.Clone().Records
	}

	columns, err := resolveColumns(schema, opts.Subjects)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		records: records,
		columns: columns,
		opts:    opts,
	}, nil
}

func resolveColumns(schema, subjects []string) ([]string, error) {
	if len(subjects) == 0 {
		if len(schema) == 0 {
			return nil, errors.NewConfigError("analyzer requires at least one numeric column", ErrNoNumericColumns)
		}
		return dedupe(schema), nil
	}

	known := make(map[string]struct{}, len(schema))
	for _, c := range schema {
		known[c] = struct{}{}
	}
	for _, s := range subjects {
		if strings.TrimSpace(s) == "" {
			return nil, errors.NewConfigError("subject names must not be empty", ErrNoNumericColumns)
		}
		if _, ok := known[s]; !ok {
			return nil, errors.NewMissingColumnError(s, ErrMissingColumn)
		}
	}
	return dedupe(subjects), nil
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Columns returns the numeric columns in declaration order.
func (a *Analyzer) Columns() []string {
	return append([]string(nil), a.columns...)
}

// Options returns the options the analyzer was built with.
func (a *Analyzer) Options() domain.AnalysisOptions {
	return a.opts
}

// Len returns the number of records under analysis.
func (a *Analyzer) Len() int {
	return len(a.records)
}

// Students returns the distinct students in first-occurrence order.
func (a *Analyzer) Students() []string {
	rs := domain.RecordSet{Records: a.records}
	return rs.Students()
}

func (a *Analyzer) hasColumn(name string) bool {
	for _, c := range a.columns {
		if c == name {
			return true
		}
	}
	return false
}

// counts reports whether v takes part in averages.
func (a *Analyzer) counts(v float64) bool {
	return !a.opts.ExcludeSentinelFromAverages || v != a.opts.SentinelScore
}
