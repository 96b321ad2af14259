// Package config provides centralized configuration management for scorecli.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe API for the analyzer policies, the HTTP server, logging,
// storage and file system paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority), including a local .env file
//  2. A YAML configuration file (config.yaml or configs/config.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SCORES_* for namespacing:
//
//	SCORES_SERVER_PORT=8080
//	SCORES_ANALYSIS_PASS_THRESHOLD=50
//	SCORES_ANALYSIS_STRICT_IMPROVEMENT=true
//	SCORES_ANALYSIS_SUBJECTS=Math,Physics
//	SCORES_LOGGING_LEVEL=debug
//	SCORES_PATHS_BASE_DIR=/srv/scores
//
// # Path Management
//
// Paths lays out the data, reports and logs directories under a base
// directory, the executable directory unless overridden:
//
//	paths, err := cfg.ResolvePaths()
//	xlsx := paths.SemesterAverageXLSX
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := analyzer.New(records, cfg.Analysis.Options())
package config
