package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "scorecli/internal/errors"
	"scorecli/internal/exporter"
	"scorecli/internal/middleware"
)

// ReloadRequest is the optional body of POST /reload
type ReloadRequest struct {
	Sources []string `json:"sources" validate:"omitempty,max=32,dive,source"`
}

// AnalyticsHandler serves analyzer queries with RFC 7807 errors
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	dataDir      string
}

// NewAnalyticsHandler creates a new analytics handler. dataDir anchors the
// relative sources accepted by POST /reload.
func NewAnalyticsHandler(service AnalyticsServiceInterface, dataDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		dataDir:      dataDir,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.validation.ValidateRequest)

	r.Get("/status", h.GetStatus)
	r.Get("/sources", h.ListSources)
	r.Get("/report", h.GetReport)
	r.Get("/failed", h.GetFailed)
	r.Get("/semesters", h.GetSemesterAverages)
	r.Get("/semesters/overview", h.GetSemesterOverview)
	r.Get("/top", h.GetTopStudents)
	r.Get("/lowest", h.GetLowestSubject)
	r.Get("/improved", h.GetImproved)

	r.Get("/subjects", h.GetSubjectOverview)
	r.Route("/subjects/{subject}", func(r chi.Router) {
		r.Get("/", h.GetSubjectAverage)
		r.Get("/scores", h.GetSubjectScores)
	})
	r.Get("/students/{student}/trend", h.GetStudentTrend)

	r.Post("/reload", h.Reload)
	r.Post("/export", h.Export)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.ListRuns)
		r.Post("/", h.SaveRun)
		r.Get("/{id}", h.GetRun)
		r.Delete("/{id}", h.DeleteRun)
	})

	return r
}

// GetStatus handles GET /api/analytics/status
func (h *AnalyticsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// GetReport handles GET /api/analytics/report
func (h *AnalyticsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.fail(w, r, "report", err)
		return
	}
	render.JSON(w, r, report)
}

// GetFailed handles GET /api/analytics/failed
func (h *AnalyticsHandler) GetFailed(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.FailedStudents(r.Context())
	if err != nil {
		h.fail(w, r, "failed", err)
		return
	}
	h.success(w, r, students, len(students))
}

// GetSemesterAverages handles GET /api/analytics/semesters
func (h *AnalyticsHandler) GetSemesterAverages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SemesterAverages(r.Context())
	if err != nil {
		h.fail(w, r, "semester_averages", err)
		return
	}
	h.success(w, r, rows, len(rows))
}

// GetSemesterOverview handles GET /api/analytics/semesters/overview
func (h *AnalyticsHandler) GetSemesterOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SemesterOverview(r.Context())
	if err != nil {
		h.fail(w, r, "semester_overview", err)
		return
	}
	h.success(w, r, rows, len(rows))
}

// GetSubjectOverview handles GET /api/analytics/subjects
func (h *AnalyticsHandler) GetSubjectOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.SubjectOverview(r.Context())
	if err != nil {
		h.fail(w, r, "subject_overview", err)
		return
	}
	h.success(w, r, rows, len(rows))
}

// GetTopStudents handles GET /api/analytics/top
func (h *AnalyticsHandler) GetTopStudents(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.TopStudents(r.Context())
	if err != nil {
		h.fail(w, r, "top_students", err)
		return
	}
	h.success(w, r, top, len(top))
}

// GetLowestSubject handles GET /api/analytics/lowest. An empty dataset
// yields a null result.
func (h *AnalyticsHandler) GetLowestSubject(w http.ResponseWriter, r *http.Request) {
	lowest, err := h.service.LowestSubject(r.Context())
	if err != nil {
		h.fail(w, r, "lowest_subject", err)
		return
	}
	count := 0
	if lowest != nil {
		count = 1
	}
	h.success(w, r, lowest, count)
}

// GetImproved handles GET /api/analytics/improved
func (h *AnalyticsHandler) GetImproved(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ImprovedStudents(r.Context())
	if err != nil {
		h.fail(w, r, "improved", err)
		return
	}
	h.success(w, r, students, len(students))
}

// GetSubjectAverage handles GET /api/analytics/subjects/{subject}
func (h *AnalyticsHandler) GetSubjectAverage(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	avg, err := h.service.SubjectAverage(r.Context(), subject)
	if err != nil {
		h.fail(w, r, "subject_average", err)
		return
	}
	render.JSON(w, r, avg)
}

// GetSubjectScores handles GET /api/analytics/subjects/{subject}/scores
func (h *AnalyticsHandler) GetSubjectScores(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	scores, err := h.service.SubjectScores(r.Context(), subject)
	if err != nil {
		h.fail(w, r, "subject_scores", err)
		return
	}
	h.success(w, r, scores, len(scores))
}

// GetStudentTrend handles GET /api/analytics/students/{student}/trend
func (h *AnalyticsHandler) GetStudentTrend(w http.ResponseWriter, r *http.Request) {
	student := chi.URLParam(r, "student")
	trend, err := h.service.StudentTrend(r.Context(), student)
	if err != nil {
		h.fail(w, r, "student_trend", err)
		return
	}
	h.success(w, r, trend, len(trend))
}

// ListSources handles GET /api/analytics/sources?pattern=glob
func (h *AnalyticsHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Sources(r.Context(), r.URL.Query().Get("pattern"))
	if err != nil {
		h.fail(w, r, "sources", err)
		return
	}
	h.success(w, r, found, len(found))
}

// Reload handles POST /api/analytics/reload. With a body listing sources the
// dataset is replaced by those files; otherwise the current sources are
// reloaded.
func (h *AnalyticsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	var req ReloadRequest
	if r.ContentLength != 0 && r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Int("sources", len(req.Sources)))

	if len(req.Sources) > 0 {
		sources := make([]string, len(req.Sources))
		for i, s := range req.Sources {
			sources[i] = filepath.Join(h.dataDir, filepath.FromSlash(s))
		}
		if err := h.service.Load(r.Context(), sources...); err != nil {
			h.fail(w, r, "reload", err)
			return
		}
		render.JSON(w, r, h.service.Status())
		return
	}

	status, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, "reload", err)
		return
	}
	render.JSON(w, r, status)
}

// Export handles POST /api/analytics/export?format=csv|xlsx
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}

	path, err := h.service.Export(r.Context(), exporter.Format(format))
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"format": format,
		"file":   filepath.Base(path),
	})
}

// ListRuns handles GET /api/analytics/runs?limit=n
func (h *AnalyticsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, 1000, 20)
	if !ok {
		return
	}

	runs, err := h.service.Runs(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "list_runs", err)
		return
	}
	h.success(w, r, runs, len(runs))
}

// SaveRun handles POST /api/analytics/runs
func (h *AnalyticsHandler) SaveRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.SaveRun(r.Context())
	if err != nil {
		h.fail(w, r, "save_run", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, run)
}

// GetRun handles GET /api/analytics/runs/{id}
func (h *AnalyticsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get_run", err)
		return
	}
	render.JSON(w, r, run)
}

// DeleteRun handles DELETE /api/analytics/runs/{id}
func (h *AnalyticsHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete_run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalyticsHandler) success(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

func (h *AnalyticsHandler) fail(w http.ResponseWriter, r *http.Request, query string, err error) {
	h.logger.WarnContext(r.Context(), "analytics query failed",
		slog.String("query", query),
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))
	h.errorHandler.HandleError(w, r, err)
}
