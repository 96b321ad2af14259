package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecli/internal/shared/testutil"
	"scorecli/pkg/contracts/domain"
)

type fixture struct {
	base    string
	sources []string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	return fixture{
		base: base,
		sources: []string{
			testutil.WriteFile(t, dataDir, "s1.csv", testutil.SemesterOneCSV),
			testutil.WriteFile(t, dataDir, "s2.csv", testutil.SemesterTwoCSV),
		},
	}
}

func (f fixture) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--base-dir", f.base, "--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestReport_Tables(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, append([]string{"report"}, f.sources...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "== Students Who Failed ==")
	assert.Contains(t, out, "  - Bob")
	assert.Contains(t, out, "Carol")
	assert.Contains(t, out, "== Average Score per Semester ==")
}

func TestReport_JSON(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, append([]string{"report", "--json"}, f.sources...)...)
	require.NoError(t, err)

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"Bob"}, report.FailedStudents)
	assert.Equal(t, []string{"Alice", "Carol"}, report.ImprovedStudents)
	assert.Equal(t, 6, report.RecordCount)
}

func TestReport_DiscoversDataDir(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, "report", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"record_count": 6`)
}

func TestReport_NoSources(t *testing.T) {
	f := fixture{base: t.TempDir()}

	_, err := f.execute(t, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data sources configured")
}

func TestSources(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "s1.csv")
	assert.Contains(t, out, "s2.csv")

	out, err = f.execute(t, "sources", "--pattern", "s2*")
	require.NoError(t, err)
	assert.Contains(t, out, "s2.csv")
	assert.NotContains(t, out, "s1.csv")
}

func TestReport_RelativeSourcesUseDataDir(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, "report", "--json", "s1.csv")
	require.NoError(t, err)
	assert.Contains(t, out, `"record_count": 3`)
}

func TestReport_Flags(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, append([]string{"report", "--json", "--threshold", "65"}, f.sources...)...)
	require.NoError(t, err)

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"Alice", "Bob"}, report.FailedStudents)
}

func TestReport_SaveAndListRuns(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, append([]string{"report", "--save"}, f.sources...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved run ")

	out, err = f.execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "== Stored Runs ==")
	assert.Contains(t, out, "s1.csv")
}

func TestRuns_Delete(t *testing.T) {
	f := newFixture(t)

	out, err := f.execute(t, append([]string{"report", "--save"}, f.sources...)...)
	require.NoError(t, err)
	idx := strings.Index(out, "Saved run ")
	require.GreaterOrEqual(t, idx, 0)
	id := strings.TrimSpace(strings.SplitN(out[idx+len("Saved run "):], "\n", 2)[0])
	require.NotEmpty(t, id)

	out, err = f.execute(t, "runs", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run "+id)

	_, err = f.execute(t, "runs", id)
	require.Error(t, err)

	_, err = f.execute(t, "runs", "delete", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRuns_UnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "runs", "missing")
	require.Error(t, err)
}

func TestRuns_StorageDisabled(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, "--no-store", "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is disabled")
	assert.NoFileExists(t, filepath.Join(f.base, "data", "scores.db"))
}

func TestExport(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		file    string
		wantErr bool
	}{
		{name: "csv", format: "csv", file: "semester_average.csv"},
		{name: "xlsx", format: "xlsx", file: "semester_average.xlsx"},
		{name: "unknown format", format: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			out, err := f.execute(t, append([]string{"export", "--format", tt.format}, f.sources...)...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			path := filepath.Join(f.base, "reports", tt.file)
			assert.FileExists(t, path)
			assert.Contains(t, out, path)
		})
	}
}

func TestClean(t *testing.T) {
	f := newFixture(t)
	outPath := filepath.Join(f.base, "clean.csv")

	out, err := f.execute(t, append([]string{"clean", "--strategy", "dropna", "--out", outPath}, f.sources...)...)
	require.NoError(t, err)

	assert.FileExists(t, outPath)
	assert.Contains(t, out, "dropna")
	assert.Contains(t, out, "Cleaned data written to "+outPath)
}

func TestClean_DefaultPath(t *testing.T) {
	f := newFixture(t)

	_, err := f.execute(t, append([]string{"clean", "--strategy", "mean"}, f.sources...)...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.base, "data", "cleaned_scores.csv"))
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown strategy", []string{"clean", "--strategy", "median", "x.csv"}, "unknown strategy"},
		{"invalid cleaning flag", []string{"--cleaning", "median", "report", "x.csv"}, ""},
		{"missing file", []string{"report", "does-not-exist.csv"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.execute(t, tt.args...)
			require.Error(t, err)
			if tt.want != "" {
				assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
			}
		})
	}
}
