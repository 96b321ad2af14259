package analyzer

import (
	"sort"

	"scorecli/pkg/contracts/domain"
)

// StudentAverages returns each student's pooled average, the sum of all
// their observations divided by the number of observations, rounded to the
// configured precision. Students without observations are omitted. The
// result is in first-occurrence order.
func (a *Analyzer) StudentAverages() []domain.StudentAverage {
	acc := make(map[string]*mean)
	var order []string
	for _, r := range a.records {
		m, ok := acc[r.Student]
		if !ok {
			m = &mean{}
			acc[r.Student] = m
			order = append(order, r.Student)
		}
		for _, c := range a.columns {
			if v, ok := r.Scores[c]; ok && a.counts(v) {
				m.add(v)
			}
		}
	}

	out := make([]domain.StudentAverage, 0, len(order))
	for _, s := range order {
		if m := acc[s]; m.ok() {
			out = append(out, domain.StudentAverage{Student: s, Average: round(m.value(), a.opts.Precision)})
		}
	}
	return out
}

// StudentsWithMaxAverage returns every student whose rounded pooled average
// equals the highest one, ordered by name.
func (a *Analyzer) StudentsWithMaxAverage() []domain.StudentAverage {
	averages := a.StudentAverages()
	top := []domain.StudentAverage{}
	if len(averages) == 0 {
		return top
	}

	best := averages[0].Average
	for _, sa := range averages[1:] {
		if sa.Average > best {
			best = sa.Average
		}
	}
	for _, sa := range averages {
		if sa.Average == best {
			top = append(top, sa)
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Student < top[j].Student })
	return top
}

// LowestScoringSubject returns the column with the lowest mean. Ties resolve
// to the first declared column. ok is false when no column has an
// observation.
func (a *Analyzer) LowestScoringSubject() (domain.SubjectAverage, bool) {
	means := a.subjectMeans()
	if len(means) == 0 {
		return domain.SubjectAverage{}, false
	}
	lowest := means[0]
	for _, m := range means[1:] {
		if m.Average < lowest.Average {
			lowest = m
		}
	}
	lowest.Average = round(lowest.Average, a.opts.Precision)
	return lowest, true
}
