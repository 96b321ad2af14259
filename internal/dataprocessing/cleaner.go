package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// Cleaning strategies
const (
	StrategyNone   = "none"
	StrategyDropNA = "dropna"
	StrategyMean   = "mean"
)

// CleaningStatistics describes what a cleaning pass changed
type CleaningStatistics struct {
	InputRows         int `json:"input_rows"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	RowsDropped       int `json:"rows_dropped"`
	CellsFilled       int `json:"cells_filled"`
	OutputRows        int `json:"output_rows"`
}

// Cleaner normalizes a record set before analysis. Exact duplicate rows are
// removed on construction; the input record set is never modified.
type Cleaner struct {
	logger *slog.Logger
	rs     *domain.RecordSet
	stats  CleaningStatistics
}

// NewCleaner creates a cleaner over a deduplicated copy of rs.
func NewCleaner(logger *slog.Logger, rs *domain.RecordSet) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if rs == nil {
		rs = &domain.RecordSet{}
	}

	out := &domain.RecordSet{Columns: append([]string(nil), rs.Columns...)}
	seen := make(map[string]struct{}, len(rs.Records))
	for _, r := range rs.Records {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Records = append(out.Records, r.Clone())
	}

	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaner")),
		rs:     out,
		stats: CleaningStatistics{
			InputRows:         len(rs.Records),
			DuplicatesRemoved: len(rs.Records) - len(out.Records),
			OutputRows:        len(out.Records),
		},
	}
}

// Data returns a copy of the deduplicated record set.
func (c *Cleaner) Data() *domain.RecordSet {
	return c.rs.Clone()
}

// Statistics returns the statistics of the most recent cleaning pass.
func (c *Cleaner) Statistics() CleaningStatistics {
	return c.stats
}

// DropMissing returns the records that have a value in every numeric column.
func (c *Cleaner) DropMissing() *domain.RecordSet {
	out := &domain.RecordSet{Columns: append([]string(nil), c.rs.Columns...)}
	for _, r := range c.rs.Records {
		complete := true
		for _, col := range c.rs.Columns {
			if _, ok := r.Scores[col]; !ok {
				complete = false
				break
			}
		}
		if complete {
			out.Records = append(out.Records, r.Clone())
		}
	}

	c.stats.RowsDropped = len(c.rs.Records) - len(out.Records)
	c.stats.CellsFilled = 0
	c.stats.OutputRows = len(out.Records)
	c.logger.Info("Dropped incomplete rows",
		slog.Int("dropped", c.stats.RowsDropped),
		slog.Int("remaining", c.stats.OutputRows))
	return out
}

// FillWithMean returns the records with every empty cell set to its column
// mean rounded to the nearest integer, halves to even. Columns without any
// value stay empty.
func (c *Cleaner) FillWithMean() *domain.RecordSet {
	means := make(map[string]float64, len(c.rs.Columns))
	for _, col := range c.rs.Columns {
		var sum float64
		var n int
		for _, r := range c.rs.Records {
			if v, ok := r.Scores[col]; ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			means[col] = math.RoundToEven(sum / float64(n))
		}
	}

	out := c.rs.Clone()
	filled := 0
	for i := range out.Records {
		r := &out.Records[i]
		for _, col := range out.Columns {
			if _, ok := r.Scores[col]; ok {
				continue
			}
			mean, ok := means[col]
			if !ok {
				continue
			}
			if r.Scores == nil {
				r.Scores = make(map[string]float64, len(out.Columns))
			}
			r.Scores[col] = mean
			filled++
		}
	}

	c.stats.RowsDropped = 0
	c.stats.CellsFilled = filled
	c.stats.OutputRows = len(out.Records)
	c.logger.Info("Filled empty cells with column means", slog.Int("cells_filled", filled))
	return out
}

// Apply runs the named strategy.
func (c *Cleaner) Apply(strategy string) (*domain.RecordSet, error) {
	switch strategy {
	case StrategyNone, "":
		return c.Data(), nil
	case StrategyDropNA:
		return c.DropMissing(), nil
	case StrategyMean:
		return c.FillWithMean(), nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown cleaning strategy %q", strategy), nil)
	}
}
