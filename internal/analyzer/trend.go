package analyzer

import (
	"sort"

	"scorecli/pkg/contracts/domain"
)

// trend is one student's per-semester averages.
type trend struct {
	student   string
	semesters []string
	means     map[string]*mean

	// first value of each column per semester, filled when deduplicating
	firsts map[string]map[string]float64
}

// groupTrends groups records by student. Trends are stored in a single slice
// indexed by first occurrence of the student. With DedupSemesterRecords a
// repeated (student, semester) pair contributes the first non-empty value of
// each column.
func (a *Analyzer) groupTrends() []trend {
	dedup := a.opts.DedupSemesterRecords
	index := make(map[string]int)
	var arena []trend
	for _, r := range a.records {
		i, ok := index[r.Student]
		if !ok {
			i = len(arena)
			index[r.Student] = i
			arena = append(arena, trend{
				student: r.Student,
				means:   make(map[string]*mean),
				firsts:  make(map[string]map[string]float64),
			})
		}
		t := &arena[i]

		m, ok := t.means[r.Semester]
		if !ok {
			m = &mean{}
			t.means[r.Semester] = m
			t.semesters = append(t.semesters, r.Semester)
			if dedup {
				t.firsts[r.Semester] = make(map[string]float64)
			}
		}
		for _, c := range a.columns {
			v, ok := r.Scores[c]
			if !ok {
				continue
			}
			if dedup {
				if _, seen := t.firsts[r.Semester][c]; !seen {
					t.firsts[r.Semester][c] = v
				}
				continue
			}
			if a.counts(v) {
				m.add(v)
			}
		}
	}

	if dedup {
		for i := range arena {
			t := &arena[i]
			for _, sem := range t.semesters {
				for _, c := range a.columns {
					if v, ok := t.firsts[sem][c]; ok && a.counts(v) {
						t.means[sem].add(v)
					}
				}
			}
		}
	}
	return arena
}

// sequence returns the semester averages in semester order, rounded to
// precision. Semesters with no observation are skipped.
func (t trend) sequence(precision int) []float64 {
	semesters := append([]string(nil), t.semesters...)
	domain.SortSemesters(semesters)
	out := make([]float64, 0, len(semesters))
	for _, sem := range semesters {
		if m := t.means[sem]; m.ok() {
			out = append(out, round(m.value(), precision))
		}
	}
	return out
}

// improving reports whether seq holds more than one value and every value
// is at least (or, when strict, greater than) its predecessor.
func improving(seq []float64, strict bool) bool {
	if len(seq) < 2 {
		return false
	}
	for i := 1; i < len(seq); i++ {
		if seq[i] < seq[i-1] || (strict && seq[i] == seq[i-1]) {
			return false
		}
	}
	return true
}

// StudentsWhoImproved returns, ordered by name, the students whose average
// never dropped from one semester to the next over their whole history.
func (a *Analyzer) StudentsWhoImproved() []string {
	improved := []string{}
	for _, t := range a.groupTrends() {
		if improving(t.sequence(a.opts.Precision), a.opts.StrictImprovement) {
			improved = append(improved, t.student)
		}
	}
	sort.Strings(improved)
	return improved
}

// StudentTrend returns a student's per-semester averages in semester order,
// rounded to the configured precision.
func (a *Analyzer) StudentTrend(student string) []domain.SemesterOverview {
	for _, t := range a.groupTrends() {
		if t.student != student {
			continue
		}
		semesters := append([]string(nil), t.semesters...)
		domain.SortSemesters(semesters)
		out := make([]domain.SemesterOverview, 0, len(semesters))
		for _, sem := range semesters {
			if m := t.means[sem]; m.ok() {
				out = append(out, domain.SemesterOverview{Semester: sem, Average: round(m.value(), a.opts.Precision)})
			}
		}
		return out
	}
	return nil
}
