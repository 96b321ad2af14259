package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"scorecli/internal/config"
	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// generated lists the files the tools write into the data and reports
// directories; they are never offered as sources.
var generated = map[string]struct{}{
	strings.ToLower(config.CleanedScoresCSVName):    {},
	strings.ToLower(config.SemesterAverageCSVName):  {},
	strings.ToLower(config.SemesterAverageXLSXName): {},
}

// IsSupportedSource reports whether name has a score file extension
func IsSupportedSource(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// isTempFile matches the lock files Excel leaves next to open workbooks
func isTempFile(name string) bool {
	return strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".")
}

// Discovery finds score sources in a directory
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a discovery rooted at basePath, usually the data
// directory. Relative directories passed to its methods resolve against it.
func NewDiscovery(logger *slog.Logger, basePath string) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		basePath: basePath,
		logger:   logger.With(slog.String("component", "file_discovery")),
	}
}

// FindSources lists the workbooks and CSV files directly inside dir, in
// natural name order so "s2.csv" comes before "s10.csv". Temporary and
// generated files are skipped. An empty dir means the base path.
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || isTempFile(name) || !IsSupportedSource(name) {
			continue
		}
		if _, ok := generated[strings.ToLower(name)]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return domain.CompareSemesters(files[i].Name, files[j].Name) < 0
	})

	d.logger.Debug("Sources discovered",
		slog.String("directory", fullPath),
		slog.Int("count", len(files)))
	return files, nil
}

// FindByPattern lists the sources in dir whose name matches a glob pattern.
// A malformed pattern is a validation error.
func (d *Discovery) FindByPattern(dir, pattern string) ([]FileInfo, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.NewAppValidationError(fmt.Sprintf("invalid pattern %q", pattern), err).
			WithContext("pattern", pattern)
	}

	all, err := d.FindSources(dir)
	if err != nil {
		return nil, err
	}
	out := []FileInfo{}
	for _, f := range all {
		if ok, _ := filepath.Match(pattern, f.Name); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Paths returns the full paths of files
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func (d *Discovery) resolve(dir string) string {
	if dir == "" {
		return d.basePath
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
