package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(base)

	assert.Equal(t, base, p.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), p.DataDir)
	assert.Equal(t, filepath.Join(base, "reports"), p.ReportsDir)
	assert.Equal(t, filepath.Join(base, "logs"), p.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", DatabaseFileName), p.DatabaseFile)
	assert.Equal(t, filepath.Join(base, "reports", SemesterAverageXLSXName), p.SemesterAverageXLSX)
	assert.Equal(t, filepath.Join(base, "reports", "x.csv"), p.GetReportPath("x.csv"))
	assert.Equal(t, filepath.Join(base, "data", "in.csv"), p.GetDataPath("in.csv"))
	assert.Equal(t, filepath.Join(base, "logs", "app.log"), p.GetLogPath("app.log"))
}

func TestLogFile(t *testing.T) {
	base := t.TempDir()
	p := NewPaths(base)
	abs := filepath.Join(t.TempDir(), "scores.log")

	tests := []struct {
		in   string
		want string
	}{
		{in: "logs/app.log", want: filepath.Join(base, "logs", "app.log")},
		{in: "app.log", want: filepath.Join(base, "logs", "app.log")},
		{in: abs, want: abs},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, p.LogFile(tt.in))
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	p := NewPaths(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.True(t, FileExists(p.DataDir))
	assert.False(t, FileExists(p.DatabaseFile))
}

func TestResolvePathsBaseDirEnv(t *testing.T) {
	base := t.TempDir()
	t.Setenv("SCORES_PATHS_BASE_DIR", base)

	p, err := Default().ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, p.BaseDir)
}

func TestResolvePathsExecutableDir(t *testing.T) {
	t.Setenv("SCORES_PATHS_BASE_DIR", "")

	p, err := Default().ResolvePaths()
	require.NoError(t, err)
	assert.NotEmpty(t, p.BaseDir)
	assert.True(t, filepath.IsAbs(p.BaseDir))
}

func TestConfigResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.ReportsDir = abs
	cfg.Storage.DatabaseFile = "custom.db"

	p, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, abs, p.ReportsDir)
	assert.Equal(t, filepath.Join(base, "data", "custom.db"), p.DatabaseFile)
	assert.Equal(t, filepath.Join(abs, SemesterAverageCSVName), p.SemesterAverageCSV)
}
