package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"scorecli/internal/analyzer"
	"scorecli/internal/config"
	"scorecli/internal/dataprocessing"
	"scorecli/internal/errors"
	"scorecli/internal/exporter"
	"scorecli/internal/files"
	"scorecli/internal/infrastructure"
	"scorecli/internal/store"
	"scorecli/pkg/contracts/domain"
)

// AnalysisService loads score datasets and answers analytics queries over
// the current one. The active analyzer is swapped atomically on reload, so
// queries never observe a partially built dataset.
type AnalysisService struct {
	cfg       config.AnalysisConfig
	paths     *config.Paths
	parser    *dataprocessing.Parser
	validator *files.SourceValidator
	store     *store.Store
	metrics   *infrastructure.AnalysisMetrics
	tracer    trace.Tracer
	logger    *slog.Logger

	current atomic.Pointer[dataset]
	reloads singleflight.Group
}

// dataset is one immutable loaded generation
type dataset struct {
	id       string
	analyzer *analyzer.Analyzer
	records  *domain.RecordSet
	sources  []string
	loadedAt time.Time
	cleaning dataprocessing.CleaningStatistics
}

// DatasetStatus describes the currently loaded dataset
type DatasetStatus struct {
	Loaded        bool                               `json:"loaded"`
	ID            string                             `json:"id,omitempty"`
	Sources       []string                           `json:"sources,omitempty"`
	LoadedAt      *time.Time                         `json:"loaded_at,omitempty"`
	Records       int                                `json:"records"`
	Students      int                                `json:"students"`
	Subjects      []string                           `json:"subjects,omitempty"`
	Cleaning      string                             `json:"cleaning"`
	CleaningStats *dataprocessing.CleaningStatistics `json:"cleaning_stats,omitempty"`
}

// AnalysisOption configures optional collaborators
type AnalysisOption func(*AnalysisService)

// WithStore enables run persistence
func WithStore(st *store.Store) AnalysisOption {
	return func(s *AnalysisService) { s.store = st }
}

// WithMetrics records query and reload metrics
func WithMetrics(m *infrastructure.AnalysisMetrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

// WithTracer overrides the global tracer
func WithTracer(t trace.Tracer) AnalysisOption {
	return func(s *AnalysisService) { s.tracer = t }
}

// NewAnalysisService creates an analysis service with no dataset loaded
func NewAnalysisService(cfg config.AnalysisConfig, paths *config.Paths, logger *slog.Logger, opts ...AnalysisOption) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "analysis_service")

	s := &AnalysisService{
		cfg:       cfg,
		paths:     paths,
		parser:    dataprocessing.NewParser(logger, dataprocessing.ParseOptions{Sheet: cfg.Sheet}),
		validator: files.NewSourceValidator(logger),
		tracer:    otel.Tracer(infrastructure.ServiceName),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("AnalysisService initialized",
		slog.Float64("pass_threshold", cfg.PassThreshold),
		slog.Float64("sentinel_score", cfg.SentinelScore),
		slog.Bool("strict_improvement", cfg.StrictImprovement),
		slog.String("cleaning", cfg.Cleaning),
		slog.Bool("storage", s.store != nil))
	return s
}

// Load parses every source concurrently, merges and cleans the result and
// makes it the active dataset. With no sources the configured ones are used,
// and without configured ones every score file in the data directory.
func (s *AnalysisService) Load(ctx context.Context, sources ...string) (err error) {
	ctx, span := s.tracer.Start(ctx, "AnalysisService.Load")
	defer span.End()

	records := 0
	defer func() {
		s.metrics.RecordReload(ctx, records, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if len(sources) == 0 {
		sources = s.cfg.Sources
	}
	if len(sources) == 0 {
		sources = s.discover()
	}
	if len(sources) == 0 {
		return errors.NewConfigError("no data sources configured", ErrNoSources)
	}

	resolved := make([]string, len(sources))
	for i, src := range sources {
		resolved[i] = s.resolveSource(src)
		if err := s.validator.ValidateSource(resolved[i]); err != nil {
			return err
		}
	}
	span.SetAttributes(attribute.StringSlice("sources", resolved))

	sets := make([]*domain.RecordSet, len(resolved))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range resolved {
		g.Go(func() error {
			rs, err := s.parser.ParseFile(gctx, src)
			if err != nil {
				return err
			}
			sets[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logServiceError(ctx, "load", "Failed to parse data source", err)
		return err
	}

	ds, err := s.build(dataprocessing.Merge(sets...), resolved)
	if err != nil {
		return err
	}
	records = ds.records.Len()
	s.current.Store(ds)

	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("dataset_id", ds.id),
		slog.Int("sources", len(resolved)),
		slog.Int("records", records),
		slog.Any("subjects", ds.analyzer.Columns()))
	return nil
}

// LoadRecordSet makes an in-memory record set the active dataset
func (s *AnalysisService) LoadRecordSet(ctx context.Context, rs *domain.RecordSet, source string) (err error) {
	defer func() {
		n := 0
		if rs != nil {
			n = rs.Len()
		}
		s.metrics.RecordReload(ctx, n, err)
	}()

	if err := s.parser.Validate(rs); err != nil {
		return err
	}
	ds, err := s.build(rs, []string{source})
	if err != nil {
		return err
	}
	s.current.Store(ds)
	return nil
}

// Reload reloads the active dataset's sources. Concurrent calls share one
// load; the load is not cancelled when a single caller goes away.
func (s *AnalysisService) Reload(ctx context.Context) (DatasetStatus, error) {
	v, err, shared := s.reloads.Do("reload", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.DefaultLoadTimeout)
		defer cancel()
		if err := s.Load(loadCtx, s.sources()...); err != nil {
			return nil, err
		}
		return s.Status(), nil
	})
	if err != nil {
		return DatasetStatus{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Reload result shared with concurrent caller")
	}
	return v.(DatasetStatus), nil
}

// Status describes the active dataset
func (s *AnalysisService) Status() DatasetStatus {
	ds := s.current.Load()
	if ds == nil {
		return DatasetStatus{Cleaning: s.cleaning()}
	}
	loadedAt := ds.loadedAt
	stats := ds.cleaning
	return DatasetStatus{
		Loaded:        true,
		ID:            ds.id,
		Sources:       append([]string(nil), ds.sources...),
		LoadedAt:      &loadedAt,
		Records:       ds.analyzer.Len(),
		Students:      len(ds.analyzer.Students()),
		Subjects:      ds.analyzer.Columns(),
		Cleaning:      s.cleaning(),
		CleaningStats: &stats,
	}
}

// Analyzer returns the active analyzer
func (s *AnalysisService) Analyzer() (*analyzer.Analyzer, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, errors.ErrNoDataset
	}
	return ds.analyzer, nil
}

// Records returns a copy of the cleaned active record set
func (s *AnalysisService) Records() (*domain.RecordSet, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, errors.ErrNoDataset
	}
	return ds.records.Clone(), nil
}

// Report bundles every query over the active dataset
func (s *AnalysisService) Report(ctx context.Context) (domain.AnalysisReport, error) {
	return runQuery(ctx, s, "report", func(a *analyzer.Analyzer) (domain.AnalysisReport, error) {
		report := a.Report()
		report.ID = uuid.New().String()
		if ds := s.current.Load(); ds != nil {
			report.Source = strings.Join(ds.sources, ",")
		}
		return report, nil
	})
}

// FailedStudents returns the students with at least one failing score
func (s *AnalysisService) FailedStudents(ctx context.Context) ([]string, error) {
	return runQuery(ctx, s, "failed", func(a *analyzer.Analyzer) ([]string, error) {
		return a.StudentsWhoFailed(), nil
	})
}

// SemesterAverages returns the per-semester subject means
func (s *AnalysisService) SemesterAverages(ctx context.Context) ([]domain.SemesterAverage, error) {
	return runQuery(ctx, s, "semester_averages", func(a *analyzer.Analyzer) ([]domain.SemesterAverage, error) {
		return a.SemesterAverages(), nil
	})
}

// TopStudents returns every student sharing the highest average
func (s *AnalysisService) TopStudents(ctx context.Context) ([]domain.StudentAverage, error) {
	return runQuery(ctx, s, "top_students", func(a *analyzer.Analyzer) ([]domain.StudentAverage, error) {
		return a.StudentsWithMaxAverage(), nil
	})
}

// LowestSubject returns the weakest subject, or nil for an empty dataset
func (s *AnalysisService) LowestSubject(ctx context.Context) (*domain.SubjectAverage, error) {
	return runQuery(ctx, s, "lowest_subject", func(a *analyzer.Analyzer) (*domain.SubjectAverage, error) {
		lowest, ok := a.LowestScoringSubject()
		if !ok {
			return nil, nil
		}
		return &lowest, nil
	})
}

// ImprovedStudents returns the students whose semester averages improve
func (s *AnalysisService) ImprovedStudents(ctx context.Context) ([]string, error) {
	return runQuery(ctx, s, "improved", func(a *analyzer.Analyzer) ([]string, error) {
		return a.StudentsWhoImproved(), nil
	})
}

// SubjectOverview returns the rounded mean of every subject
func (s *AnalysisService) SubjectOverview(ctx context.Context) ([]domain.SubjectAverage, error) {
	return runQuery(ctx, s, "subject_overview", func(a *analyzer.Analyzer) ([]domain.SubjectAverage, error) {
		names, values := a.AverageAllSubjects()
		out := make([]domain.SubjectAverage, len(names))
		for i := range names {
			out[i] = domain.SubjectAverage{Subject: names[i], Average: values[i]}
		}
		return out, nil
	})
}

// SemesterOverview returns the rounded mean of every semester
func (s *AnalysisService) SemesterOverview(ctx context.Context) ([]domain.SemesterOverview, error) {
	return runQuery(ctx, s, "semester_overview", func(a *analyzer.Analyzer) ([]domain.SemesterOverview, error) {
		names, values := a.AverageAllSemesters()
		out := make([]domain.SemesterOverview, len(names))
		for i := range names {
			out[i] = domain.SemesterOverview{Semester: names[i], Average: values[i]}
		}
		return out, nil
	})
}

// SubjectAverage returns the mean of one subject column
func (s *AnalysisService) SubjectAverage(ctx context.Context, subject string) (domain.SubjectAverage, error) {
	return runQuery(ctx, s, "subject_average", func(a *analyzer.Analyzer) (domain.SubjectAverage, error) {
		return a.SubjectAverage(subject)
	})
}

// SubjectScores returns every observed score of one subject column
func (s *AnalysisService) SubjectScores(ctx context.Context, subject string) ([]float64, error) {
	return runQuery(ctx, s, "subject_scores", func(a *analyzer.Analyzer) ([]float64, error) {
		return a.SubjectScores(subject)
	})
}

// StudentTrend returns one student's per-semester averages
func (s *AnalysisService) StudentTrend(ctx context.Context, student string) ([]domain.SemesterOverview, error) {
	return runQuery(ctx, s, "student_trend", func(a *analyzer.Analyzer) ([]domain.SemesterOverview, error) {
		for _, name := range a.Students() {
			if name == student {
				return a.StudentTrend(student), nil
			}
		}
		return nil, errors.NewAppError(errors.ErrTypeNotFound, fmt.Sprintf("student %q not found", student), ErrStudentNotFound).
			WithContext("student", student)
	})
}

// Export writes the semester averages table in the given format and returns
// the written path
func (s *AnalysisService) Export(ctx context.Context, format exporter.Format) (string, error) {
	return runQuery(ctx, s, "export", func(a *analyzer.Analyzer) (string, error) {
		w := exporter.NewSummaryExporter(s.logger, s.paths, format)
		if err := a.PersistSemesterAverages(ctx, w); err != nil {
			return "", err
		}
		return w.LastPath, nil
	})
}

// ExportCleaned writes the cleaned active record set to path. An empty path
// uses the cleaned scores file in the data directory.
func (s *AnalysisService) ExportCleaned(ctx context.Context, path string) (string, error) {
	rs, err := s.Records()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return exporter.NewRecordExporter(s.logger, s.paths).Write(path, rs)
}

// SaveRun persists the semester averages table as a new stored run
func (s *AnalysisService) SaveRun(ctx context.Context) (*store.Run, error) {
	if s.store == nil {
		return nil, errors.NewConfigError("storage is disabled", ErrStorageDisabled)
	}
	return runQuery(ctx, s, "save_run", func(a *analyzer.Analyzer) (*store.Run, error) {
		source := ""
		if ds := s.current.Load(); ds != nil {
			source = strings.Join(ds.sources, ",")
		}
		w := s.store.Writer(s.logger, source)
		if err := a.PersistSemesterAverages(ctx, w); err != nil {
			return nil, err
		}
		return w.Last, nil
	})
}

// Runs lists stored runs, most recent first
func (s *AnalysisService) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if s.store == nil {
		return nil, errors.NewConfigError("storage is disabled", ErrStorageDisabled)
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, errors.NewStorageError("failed to list runs", err)
	}
	return runs, nil
}

// Run returns one stored run with its averages
func (s *AnalysisService) Run(ctx context.Context, id string) (*store.Run, error) {
	if s.store == nil {
		return nil, errors.NewConfigError("storage is disabled", ErrStorageDisabled)
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeNotFound) {
			return nil, err
		}
		return nil, errors.NewStorageError("failed to get run", err).WithContext("run_id", id)
	}
	return run, nil
}

// DeleteRun removes a stored run and its averages
func (s *AnalysisService) DeleteRun(ctx context.Context, id string) error {
	if s.store == nil {
		return errors.NewConfigError("storage is disabled", ErrStorageDisabled)
	}
	if err := s.store.DeleteRun(ctx, id); err != nil {
		if errors.IsType(err, errors.ErrTypeNotFound) {
			return err
		}
		return errors.NewStorageError("failed to delete run", err).WithContext("run_id", id)
	}
	s.logger.InfoContext(ctx, "Run deleted", slog.String("run_id", id))
	return nil
}

// Sources lists the score files available in the data directory. A
// non-empty pattern keeps only the names matching that glob.
func (s *AnalysisService) Sources(ctx context.Context, pattern string) ([]files.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.paths == nil {
		return []files.FileInfo{}, nil
	}

	d := files.NewDiscovery(s.logger, s.paths.DataDir)
	var found []files.FileInfo
	var err error
	if pattern == "" {
		found, err = d.FindSources("")
	} else {
		found, err = d.FindByPattern("", pattern)
	}
	if err != nil {
		if errors.IsType(err, errors.ErrTypeValidation) {
			return nil, err
		}
		return nil, errors.NewStorageError("failed to list sources", err)
	}
	return found, nil
}

// StorageReady reports whether the configured store answers queries
func (s *AnalysisService) StorageReady(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	return true, s.store.DB().PingContext(ctx)
}

func (s *AnalysisService) build(rs *domain.RecordSet, sources []string) (*dataset, error) {
	cleaner := dataprocessing.NewCleaner(s.logger, rs)
	cleaned, err := cleaner.Apply(s.cfg.Cleaning)
	if err != nil {
		return nil, err
	}

	a, err := analyzer.New(cleaned, s.cfg.Options())
	if err != nil {
		return nil, err
	}

	return &dataset{
		id:       uuid.New().String(),
		analyzer: a,
		records:  cleaned,
		sources:  append([]string(nil), sources...),
		loadedAt: time.Now().UTC(),
		cleaning: cleaner.Statistics(),
	}, nil
}

func (s *AnalysisService) sources() []string {
	if ds := s.current.Load(); ds != nil && len(ds.sources) > 0 && ds.sources[0] != "" {
		return ds.sources
	}
	return s.cfg.Sources
}

func (s *AnalysisService) discover() []string {
	found, err := s.Sources(context.Background(), "")
	if err != nil {
		s.logger.Warn("Source discovery failed", slog.String("error", err.Error()))
		return nil
	}
	return files.Paths(found)
}

func (s *AnalysisService) cleaning() string {
	if s.cfg.Cleaning == "" {
		return dataprocessing.StrategyNone
	}
	return s.cfg.Cleaning
}

// resolveSource looks relative sources up in the data directory when they do
// not exist relative to the working directory
func (s *AnalysisService) resolveSource(src string) string {
	if filepath.IsAbs(src) || s.paths == nil || config.FileExists(src) {
		return src
	}
	candidate := s.paths.GetDataPath(src)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return src
}

func runQuery[T any](ctx context.Context, s *AnalysisService, name string, fn func(*analyzer.Analyzer) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "analysis."+name)
	defer span.End()

	start := time.Now()
	var out T
	a, err := s.Analyzer()
	if err == nil {
		out, err = fn(a)
	}
	s.metrics.RecordQuery(ctx, name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return zero, err
	}
	return out, nil
}
