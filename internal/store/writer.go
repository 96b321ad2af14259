package store

import (
	"context"
	"log/slog"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// RunWriter adapts the store to the analyzer's summary writer interface.
type RunWriter struct {
	store  *Store
	source string
	logger *slog.Logger

	// Last is the run saved by the most recent write
	Last *Run
}

// Writer returns a summary writer that tags runs with source.
func (s *Store) Writer(logger *slog.Logger, source string) *RunWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunWriter{
		store:  s,
		source: source,
		logger: logger.With(slog.String("component", "store")),
	}
}

// WriteSemesterAverages saves the table as a new run.
func (w *RunWriter) WriteSemesterAverages(ctx context.Context, columns []string, rows []domain.SemesterAverage) error {
	run, err := w.store.SaveSemesterAverages(ctx, w.source, columns, rows)
	if err != nil {
		return errors.NewStorageError("failed to save semester averages", err)
	}
	w.Last = run
	w.logger.InfoContext(ctx, "Semester averages saved",
		slog.String("run_id", run.ID),
		slog.Int("semesters", run.SemesterCount))
	return nil
}
