package analyzer

import (
	"context"
	"time"

	"scorecli/pkg/contracts/domain"
)

// SummaryWriter persists the semester by subject averages table.
type SummaryWriter interface {
	WriteSemesterAverages(ctx context.Context, columns []string, rows []domain.SemesterAverage) error
}

// PersistSemesterAverages hands the semester averages to w.
func (a *Analyzer) PersistSemesterAverages(ctx context.Context, w SummaryWriter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.WriteSemesterAverages(ctx, a.Columns(), a.SemesterAverages())
}

// Report runs every query and bundles the results.
func (a *Analyzer) Report() domain.AnalysisReport {
	report := domain.AnalysisReport{
		GeneratedAt:      time.Now().UTC(),
		RecordCount:      len(a.records),
		StudentCount:     len(a.Students()),
		Subjects:         a.Columns(),
		FailedStudents:   a.StudentsWhoFailed(),
		SemesterAverages: a.SemesterAverages(),
		TopStudents:      a.StudentsWithMaxAverage(),
		ImprovedStudents: a.StudentsWhoImproved(),
	}
	if lowest, ok := a.LowestScoringSubject(); ok {
		report.LowestSubject = &lowest
	}

	subjects, subjectValues := a.AverageAllSubjects()
	report.SubjectOverview = make([]domain.SubjectAverage, len(subjects))
	for i, s := range subjects {
		report.SubjectOverview[i] = domain.SubjectAverage{Subject: s, Average: subjectValues[i]}
	}

	semesters, semesterValues := a.AverageAllSemesters()
	report.SemesterOverview = make([]domain.SemesterOverview, len(semesters))
	for i, s := range semesters {
		report.SemesterOverview[i] = domain.SemesterOverview{Semester: s, Average: semesterValues[i]}
	}
	return report
}
