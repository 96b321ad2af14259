package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for every file path the tools use
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string

	// Well-known files
	DatabaseFile        string
	SemesterAverageXLSX string
	SemesterAverageCSV  string
	CleanedScoresCSV    string
}

// NewPaths lays out the standard directory structure under baseDir:
//
//	base/
//	  ├── data/       (score workbooks and CSV files)
//	  │   └── scores.db
//	  ├── reports/    (exported summaries)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	return newPaths(baseDir, Default().Paths, DatabaseFileName)
}

func newPaths(baseDir string, pc PathsConfig, dbFile string) *Paths {
	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(baseDir, dir)
	}

	dataDir := resolve(pc.DataDir)
	reportsDir := resolve(pc.ReportsDir)

	db := dbFile
	if !filepath.IsAbs(db) {
		db = filepath.Join(dataDir, db)
	}

	return &Paths{
		BaseDir:             baseDir,
		DataDir:             dataDir,
		ReportsDir:          reportsDir,
		LogsDir:             resolve(pc.LogsDir),
		DatabaseFile:        db,
		SemesterAverageXLSX: filepath.Join(reportsDir, SemesterAverageXLSXName),
		SemesterAverageCSV:  filepath.Join(reportsDir, SemesterAverageCSVName),
		CleanedScoresCSV:    filepath.Join(dataDir, CleanedScoresCSVName),
	}
}

// ResolvePaths lays out the configured directories under the configured
// base directory. Without one, SCORES_PATHS_BASE_DIR or the executable's
// directory is used.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		var err error
		if base, err = baseDir(); err != nil {
			return nil, err
		}
	}
	return newPaths(base, c.Paths, c.Storage.DatabaseFile), nil
}

func baseDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_PATHS_BASE_DIR"); dir != "" {
		return dir, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Default().Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetDataPath returns the path for a data file
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogFile places a relative log file in the logs directory. Absolute paths
// are returned unchanged.
func (p *Paths) LogFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return p.GetLogPath(filepath.Base(path))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("database", p.DatabaseFile),
			slog.String("semester_average_xlsx", p.SemesterAverageXLSX),
			slog.String("semester_average_csv", p.SemesterAverageCSV),
		))
}
