package config

import "time"

// Application constants
const (
	AppName    = "scorecli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. SCORES_ANALYSIS_PASS_THRESHOLD.
	EnvPrefix = "SCORES"

	// Well-known file names
	DatabaseFileName         = "scores.db"
	SemesterAverageXLSXName  = "semester_average.xlsx"
	SemesterAverageCSVName   = "semester_average.csv"
	CleanedScoresCSVName     = "cleaned_scores.csv"
	DefaultSemesterSheetName = "Semester Averages"

	// Cleaning strategies
	CleaningNone   = "none"
	CleaningDropNA = "dropna"
	CleaningMean   = "mean"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout = 30 * time.Second
	DefaultLoadTimeout    = 2 * time.Minute

	// File permissions
	DirPermissions  = 0755
	FilePermissions = 0644
)
