// Package app wires configuration, logging, OpenTelemetry, the SQLite store
// and the analysis services into one HTTP application, and owns its
// lifecycle.
//
// Initialization order:
//
//  1. Resolve paths and create the data, reports and logs directories
//  2. Initialize OpenTelemetry tracing and the Prometheus meter
//  3. Open the store when storage is enabled
//  4. Build the analysis and health services
//  5. Mount the chi router and create the http.Server
//
// Start loads the configured sources before serving; a failed load is
// logged and the dataset can be loaded later with POST /api/analytics/reload.
// Run blocks until SIGINT or SIGTERM and then shuts down gracefully.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
