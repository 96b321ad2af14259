package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// SaveSemesterAverages stores the table as a new run and returns it.
func (s *Store) SaveSemesterAverages(ctx context.Context, source string, columns []string, rows []domain.SemesterAverage) (*Run, error) {
	subjectsJSON, err := json.Marshal(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subjects: %w", err)
	}
	rows = storedRows(columns, rows)

	run := &Run{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		Source:        source,
		Subjects:      append([]string(nil), columns...),
		SemesterCount: len(rows),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, created_at, source, subjects, semester_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339), run.Source, string(subjectsJSON), run.SemesterCount)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("failed to insert run: %w", wrapMissingSchema(err))
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO semester_averages (run_id, semester, subject, average) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		for _, subject := range columns {
			avg, ok := row.Averages[subject]
			if !ok {
				continue
			}
			if _, err := stmt.ExecContext(ctx, run.ID, row.Semester, subject, avg); err != nil {
				tx.Rollback() //nolint:errcheck
				return nil, fmt.Errorf("failed to insert average %s/%s: %w", row.Semester, subject, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	run.Averages = cloneRows(rows)
	return run, nil
}

// storedRows drops semesters with no average for any of the columns.
func storedRows(columns []string, rows []domain.SemesterAverage) []domain.SemesterAverage {
	out := make([]domain.SemesterAverage, 0, len(rows))
	for _, row := range rows {
		for _, subject := range columns {
			if _, ok := row.Averages[subject]; ok {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// ListRuns returns the most recent runs first, without their averages.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, created_at, source, subjects, semester_count FROM analysis_runs ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", wrapMissingSchema(err))
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a run with its averages.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, subjects, semester_count FROM analysis_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("run %s", id)).WithContext("run_id", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT semester, subject, average FROM semester_averages WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get averages for run %s: %w", id, err)
	}
	defer rows.Close()

	bySemester := make(map[string]map[string]float64)
	for rows.Next() {
		var semester, subject string
		var avg float64
		if err := rows.Scan(&semester, &subject, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan average: %w", err)
		}
		if bySemester[semester] == nil {
			bySemester[semester] = make(map[string]float64)
		}
		bySemester[semester][subject] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate averages: %w", err)
	}

	semesters := make([]string, 0, len(bySemester))
	for k := range bySemester {
		semesters = append(semesters, k)
	}
	domain.SortSemesters(semesters)

	run.Averages = make([]domain.SemesterAverage, len(semesters))
	for i, sem := range semesters {
		run.Averages[i] = domain.SemesterAverage{Semester: sem, Averages: bySemester[sem]}
	}
	return run, nil
}

// DeleteRun removes a run and its averages.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, wrapMissingSchema(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("run %s", id)).WithContext("run_id", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var createdAt string
	var source sql.NullString
	var subjectsJSON string

	err := sc.Scan(&run.ID, &createdAt, &source, &subjectsJSON, &run.SemesterCount)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", wrapMissingSchema(err))
	}

	run.Source = source.String
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(subjectsJSON), &run.Subjects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subjects for run %s: %w", run.ID, err)
	}
	return &run, nil
}

func cloneRows(rows []domain.SemesterAverage) []domain.SemesterAverage {
	out := make([]domain.SemesterAverage, len(rows))
	for i, r := range rows {
		avgs := make(map[string]float64, len(r.Averages))
		for k, v := range r.Averages {
			avgs[k] = v
		}
		out[i] = domain.SemesterAverage{Semester: r.Semester, Averages: avgs}
	}
	return out
}
