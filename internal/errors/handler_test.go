package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/subjects/Art", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing column",
			err:        NewMissingColumnError("Art", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeMissingColumn,
		},
		{
			name:       "wrapped validation",
			err:        fmt.Errorf("load: %w", NewAppValidationError("row 3: student is required", nil)),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "configuration",
			err:        NewConfigError("no numeric columns", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeConfiguration,
		},
		{
			name:       "parsing",
			err:        NewParsingError("bad workbook", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeParsing,
		},
		{
			name:       "storage",
			err:        NewStorageError("disk full", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "api error",
			err:        ErrNoDataset,
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeNoDataset,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain not found",
			err:        fmt.Errorf("dataset not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/analytics/subjects/Art", problem.Instance)
		})
	}
}

func TestHandleError(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/subjects/Art", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewMissingColumnError("Art", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeMissingColumn, body["type"])
	assert.Equal(t, "Art", body["column"])
	assert.Equal(t, "MISSING_COLUMN", body["error_type"])
	assert.Contains(t, body, "trace_id")
}

func TestHandleErrorNil(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := newTestHandler()
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("analyzer exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/report", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeInternal)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/analytics/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE")
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("column", "Math")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Math", out["column"])
	assert.Equal(t, float64(404), out["status"])
	assert.NotContains(t, out, "detail")
}

func TestHandleErrorAPIErrorDetails(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/report", nil),
		ErrValidation("pass_threshold", "must exceed sentinel"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pass_threshold", details["field"])
}
