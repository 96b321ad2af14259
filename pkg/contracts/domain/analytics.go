package domain

import (
	"time"
)

// StudentAverage is a student's pooled average over every observation.
type StudentAverage struct {
	Student string  `json:"student"`
	Average float64 `json:"average"`
}

// SubjectAverage is the mean score of one subject column.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

// SemesterAverage holds the per-subject means of one semester. Subjects with
// no observations in the semester are absent from Averages.
type SemesterAverage struct {
	Semester string             `json:"semester" validate:"required"`
	Averages map[string]float64 `json:"averages"`
}

// SemesterOverview is the mean over all students and subjects of a semester.
type SemesterOverview struct {
	Semester string  `json:"semester"`
	Average  float64 `json:"average"`
}

// AnalysisOptions configures analyzer behavior.
type AnalysisOptions struct {
	// PassThreshold is the lowest passing score.
	PassThreshold float64 `json:"pass_threshold" yaml:"pass_threshold" validate:"gtfield=SentinelScore"`
	// SentinelScore marks a subject that was not assessed.
	SentinelScore float64 `json:"sentinel_score" yaml:"sentinel_score" validate:"gte=0"`
	// StrictImprovement requires strictly increasing semester averages
	// instead of non-decreasing ones.
	StrictImprovement bool `json:"strict_improvement" yaml:"strict_improvement"`
	// DedupSemesterRecords keeps only the first record of a repeated
	// (student, semester) pair when building trends.
	DedupSemesterRecords bool `json:"dedup_semester_records" yaml:"dedup_semester_records"`
	// ExcludeSentinelFromAverages drops sentinel scores from every mean.
	ExcludeSentinelFromAverages bool `json:"exclude_sentinel_from_averages" yaml:"exclude_sentinel_from_averages"`
	// Subjects fixes the analyzed columns; empty means use the schema.
	Subjects []string `json:"subjects,omitempty" yaml:"subjects"`
	// Precision is the number of decimals used when rounding averages.
	Precision int `json:"precision" yaml:"precision" validate:"gte=0,lte=6"`
}

// DefaultAnalysisOptions returns the options used when nothing is configured.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		PassThreshold:        50,
		SentinelScore:        0,
		StrictImprovement:    false,
		DedupSemesterRecords: true,
		Precision:            2,
	}
}

// AnalysisReport bundles every analyzer query for presenters.
type AnalysisReport struct {
	ID               string             `json:"id,omitempty"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Source           string             `json:"source,omitempty"`
	RecordCount      int                `json:"record_count"`
	StudentCount     int                `json:"student_count"`
	Subjects         []string           `json:"subjects"`
	FailedStudents   []string           `json:"failed_students"`
	SemesterAverages []SemesterAverage  `json:"semester_averages"`
	TopStudents      []StudentAverage   `json:"top_students"`
	LowestSubject    *SubjectAverage    `json:"lowest_subject,omitempty"`
	ImprovedStudents []string           `json:"improved_students"`
	SubjectOverview  []SubjectAverage   `json:"subject_overview"`
	SemesterOverview []SemesterOverview `json:"semester_overview"`
}
