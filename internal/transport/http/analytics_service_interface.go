package http

import (
	"context"

	"scorecli/internal/exporter"
	"scorecli/internal/files"
	"scorecli/internal/services"
	"scorecli/internal/store"
	"scorecli/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the analytics operations served over HTTP
type AnalyticsServiceInterface interface {
	Status() services.DatasetStatus
	Load(ctx context.Context, sources ...string) error
	Reload(ctx context.Context) (services.DatasetStatus, error)
	Sources(ctx context.Context, pattern string) ([]files.FileInfo, error)

	Report(ctx context.Context) (domain.AnalysisReport, error)
	FailedStudents(ctx context.Context) ([]string, error)
	SemesterAverages(ctx context.Context) ([]domain.SemesterAverage, error)
	SemesterOverview(ctx context.Context) ([]domain.SemesterOverview, error)
	SubjectOverview(ctx context.Context) ([]domain.SubjectAverage, error)
	TopStudents(ctx context.Context) ([]domain.StudentAverage, error)
	LowestSubject(ctx context.Context) (*domain.SubjectAverage, error)
	ImprovedStudents(ctx context.Context) ([]string, error)
	SubjectAverage(ctx context.Context, subject string) (domain.SubjectAverage, error)
	SubjectScores(ctx context.Context, subject string) ([]float64, error)
	StudentTrend(ctx context.Context, student string) ([]domain.SemesterOverview, error)

	Export(ctx context.Context, format exporter.Format) (string, error)
	SaveRun(ctx context.Context) (*store.Run, error)
	Runs(ctx context.Context, limit int) ([]store.Run, error)
	Run(ctx context.Context, id string) (*store.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

var _ AnalyticsServiceInterface = (*services.AnalysisService)(nil)
