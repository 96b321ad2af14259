package exporter

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"scorecli/internal/config"
	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleRows() []domain.SemesterAverage {
	return []domain.SemesterAverage{
		{Semester: "S1", Averages: map[string]float64{"Math": 60, "Physics": 70.125}},
		{Semester: "S2", Averages: map[string]float64{"Math": 80}},
	}
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	paths := config.NewPaths("/base")
	w := NewCSVWriter(nil, paths)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute", "/tmp/out.csv", "/tmp/out.csv"},
		{"data prefix", "data/clean.csv", filepath.Join("/base", "data", "clean.csv")},
		{"report default", "summary.csv", filepath.Join("/base", "reports", "summary.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.resolvePath(tt.in))
		})
	}
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil, config.NewPaths(dir))
	path := filepath.Join(dir, "nested", "out.csv")

	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"3", "4"}},
	}))

	assert.Equal(t, [][]string{{"a", "b"}, {"3", "4"}}, readCSV(t, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(nil, nil)
	path := filepath.Join(dir, "bom.csv")

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"x"}, Records: [][]string{{"1"}}, BOMPrefix: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, [][]string{{"x"}, {"1"}}, readCSV(t, path))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestSummaryExporter_CSV(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	e := NewSummaryExporter(nil, paths, FormatCSV)

	err := e.WriteSemesterAverages(context.Background(), []string{"Math", "Physics"}, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, paths.SemesterAverageCSV, e.LastPath)

	assert.Equal(t, [][]string{
		{"Semester", "Math", "Physics"},
		{"S1", "60", "70.125"},
		{"S2", "80", ""},
	}, readCSV(t, paths.SemesterAverageCSV))
}

func TestSummaryExporter_XLSX(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	e := NewSummaryExporter(nil, paths, FormatXLSX)

	require.NoError(t, e.WriteSemesterAverages(context.Background(), []string{"Math", "Physics"}, sampleRows()))
	assert.Equal(t, paths.SemesterAverageXLSX, e.LastPath)

	f, err := excelize.OpenFile(paths.SemesterAverageXLSX)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{config.DefaultSemesterSheetName}, f.GetSheetList())

	rows, err := f.GetRows(config.DefaultSemesterSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Semester", "Math", "Physics"}, rows[0])
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "60", rows[1][1])
	assert.Equal(t, "S2", rows[2][0])
	assert.Equal(t, "80", rows[2][1])
}

func TestSummaryExporter_CancelledContext(t *testing.T) {
	e := NewSummaryExporter(nil, config.NewPaths(t.TempDir()), FormatCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.WriteSemesterAverages(ctx, []string{"Math"}, sampleRows())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, e.LastPath)
}

func TestRecordExporter_Write(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	rs := &domain.RecordSet{
		Columns: []string{"Math", "Physics"},
		Records: []domain.Record{
			{Student: "Alice", Semester: "S1", Scores: map[string]float64{"Math": 55.5, "Physics": 70}, Attributes: map[string]string{"Class": "A"}},
			{Student: "Bob", Semester: "S1", Scores: map[string]float64{"Math": 40}},
		},
	}

	path, err := NewRecordExporter(nil, paths).Write("", rs)
	require.NoError(t, err)
	assert.Equal(t, paths.CleanedScoresCSV, path)

	assert.Equal(t, [][]string{
		{"Student", "Semester", "Math", "Physics", "Class"},
		{"Alice", "S1", "55.5", "70", "A"},
		{"Bob", "S1", "40", "", ""},
	}, readCSV(t, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3], "cleaned records carry a BOM")
}
