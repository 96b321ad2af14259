package analyzer

import (
	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// AverageBySemester returns, per semester, the mean of every subject with at
// least one observation in that semester.
func (a *Analyzer) AverageBySemester() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, sa := range a.SemesterAverages() {
		out[sa.Semester] = sa.Averages
	}
	return out
}

// SemesterAverages returns the per-semester subject means ordered by
// semester. Values are not rounded.
func (a *Analyzer) SemesterAverages() []domain.SemesterAverage {
	acc := make(map[string]map[string]*mean)
	var semesters []string
	for _, r := range a.records {
		bySubject, ok := acc[r.Semester]
		if !ok {
			bySubject = make(map[string]*mean, len(a.columns))
			acc[r.Semester] = bySubject
			semesters = append(semesters, r.Semester)
		}
		for _, c := range a.columns {
			v, ok := r.Scores[c]
			if !ok || !a.counts(v) {
				continue
			}
			m, ok := bySubject[c]
			if !ok {
				m = &mean{}
				bySubject[c] = m
			}
			m.add(v)
		}
	}
	domain.SortSemesters(semesters)

	out := make([]domain.SemesterAverage, 0, len(semesters))
	for _, sem := range semesters {
		averages := make(map[string]float64, len(acc[sem]))
		for c, m := range acc[sem] {
			averages[c] = m.value()
		}
		out = append(out, domain.SemesterAverage{Semester: sem, Averages: averages})
	}
	return out
}

// AverageAllSubjects returns each numeric column with its rounded mean over
// the whole set. Columns without observations are omitted.
func (a *Analyzer) AverageAllSubjects() ([]string, []float64) {
	subjects := []string{}
	values := []float64{}
	for _, sa := range a.subjectMeans() {
		subjects = append(subjects, sa.Subject)
		values = append(values, round(sa.Average, a.opts.Precision))
	}
	return subjects, values
}

// AverageAllSemesters returns each semester with the rounded mean of every
// observation recorded in it, ordered by semester.
func (a *Analyzer) AverageAllSemesters() ([]string, []float64) {
	acc := make(map[string]*mean)
	var semesters []string
	for _, r := range a.records {
		for _, c := range a.columns {
			v, ok := r.Scores[c]
			if !ok || !a.counts(v) {
				continue
			}
			m, ok := acc[r.Semester]
			if !ok {
				m = &mean{}
				acc[r.Semester] = m
				semesters = append(semesters, r.Semester)
			}
			m.add(v)
		}
	}
	domain.SortSemesters(semesters)

	values := make([]float64, len(semesters))
	for i, sem := range semesters {
		values[i] = round(acc[sem].value(), a.opts.Precision)
	}
	if semesters == nil {
		semesters = []string{}
	}
	return semesters, values
}

// SubjectAverage returns the rounded mean of one subject.
func (a *Analyzer) SubjectAverage(subject string) (domain.SubjectAverage, error) {
	if !a.hasColumn(subject) {
		return domain.SubjectAverage{}, errors.NewMissingColumnError(subject, ErrMissingColumn)
	}
	var m mean
	for _, r := range a.records {
		if v, ok := r.Scores[subject]; ok && a.counts(v) {
			m.add(v)
		}
	}
	if !m.ok() {
		resource := "observations for subject " + subject
		return domain.SubjectAverage{}, errors.NewNotFoundError(resource).WithContext("column", subject)
	}
	return domain.SubjectAverage{Subject: subject, Average: round(m.value(), a.opts.Precision)}, nil
}

// SubjectScores returns the recorded scores of one subject in record order.
func (a *Analyzer) SubjectScores(subject string) ([]float64, error) {
	if !a.hasColumn(subject) {
		return nil, errors.NewMissingColumnError(subject, ErrMissingColumn)
	}
	scores := []float64{}
	for _, r := range a.records {
		if v, ok := r.Scores[subject]; ok {
			scores = append(scores, v)
		}
	}
	return scores, nil
}

// subjectMeans returns the unrounded mean of every observed column in
// declaration order.
func (a *Analyzer) subjectMeans() []domain.SubjectAverage {
	acc := make([]mean, len(a.columns))
	for _, r := range a.records {
		for i, c := range a.columns {
			if v, ok := r.Scores[c]; ok && a.counts(v) {
				acc[i].add(v)
			}
		}
	}
	out := make([]domain.SubjectAverage, 0, len(a.columns))
	for i, c := range a.columns {
		if acc[i].ok() {
			out = append(out, domain.SubjectAverage{Subject: c, Average: acc[i].value()})
		}
	}
	return out
}
