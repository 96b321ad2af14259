// Package services implements the business logic layer of scorecli. It sits
// between the transports (HTTP handlers, CLI commands) and the analyzer,
// owning dataset loading, cleaning, export and persistence.
//
// # Services
//
//	AnalysisService  loads score files, holds the active analyzer and answers queries
//	HealthService    liveness, readiness and version information
//
// # Dataset lifecycle
//
// AnalysisService.Load parses every configured source concurrently with an
// errgroup, merges the record sets, applies the configured cleaning strategy
// and builds a new analyzer. The new dataset replaces the old one with a
// single atomic store, so in-flight queries finish against the dataset they
// started with. Reload collapses concurrent calls through singleflight.
//
// # Observability
//
// Every query runs inside an OpenTelemetry span and records the
// analysis_queries_total counter and analysis_query_duration_seconds
// histogram. Loads record analysis_reloads_total.
//
// # Errors
//
// Services return internal/errors values: AppError for domain failures
// (CONFIG, MISSING_COLUMN, NOT_FOUND, PARSING, STORAGE) and ErrNoDataset
// when no dataset has been loaded. Transports map them to RFC 7807
// responses through errors.ErrorHandler.
package services
