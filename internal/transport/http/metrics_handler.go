package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps the exporter's HTTP handler. A nil handler serves
// 404 so the route stays stable when metrics are disabled.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	return &MetricsHandler{handler: handler}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handler.ServeHTTP)
	return r
}
