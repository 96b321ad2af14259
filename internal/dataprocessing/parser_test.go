package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

func newTestParser(opts ParseOptions) *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
}

// writeWorkbook saves rows to a new workbook sheet and returns its path.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "scores.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Scores", [][]interface{}{
		{"Student score report"},
		{},
		{"Student", "Semester", "Math", "Physics", "Advisor"},
		{"Alice", "S1", 40, 60, "Dr. Smith"},
		{"Alice", "S2", 90, 95, "Ms. Jones"},
		{"Bob", "S1", 75, nil, "Dr. Smith"},
	})

	rs, err := newTestParser(ParseOptions{}).ParseWorkbook(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Math", "Physics"}, rs.Columns)
	require.Len(t, rs.Records, 3)
	assert.Equal(t, domain.Record{
		Student:    "Alice",
		Semester:   "S1",
		Scores:     map[string]float64{"Math": 40, "Physics": 60},
		Attributes: map[string]string{"Advisor": "Dr. Smith"},
	}, rs.Records[0])

	_, ok := rs.Records[2].Score("Physics")
	assert.False(t, ok, "empty cell must be missing")
}

func TestParseWorkbookSheetSelection(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"notes only"}))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"Student", "Semester", "Math"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{"Cara", "1", 88}))
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	t.Run("auto detect", func(t *testing.T) {
		rs, err := newTestParser(ParseOptions{}).ParseWorkbook(context.Background(), path)
		require.NoError(t, err)
		require.Len(t, rs.Records, 1)
		assert.Equal(t, "Cara", rs.Records[0].Student)
	})

	t.Run("explicit sheet without header", func(t *testing.T) {
		_, err := newTestParser(ParseOptions{Sheet: "Sheet1"}).ParseWorkbook(context.Background(), path)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := newTestParser(ParseOptions{Sheet: "Missing"}).ParseWorkbook(context.Background(), path)
		assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
	})
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		opts        ParseOptions
		wantColumns []string
		wantRecords int
		wantType    errors.ErrorType
	}{
		{
			name:        "basic",
			input:       "Student,Semester,Math,Physics\nAlice,S1,40,60\nBob,S1,70,80\n",
			wantColumns: []string{"Math", "Physics"},
			wantRecords: 2,
		},
		{
			name:        "bom and blank lines",
			input:       "\ufeffStudent,Semester,Math\n\nAlice,S1,40\n,,\n",
			wantColumns: []string{"Math"},
			wantRecords: 1,
		},
		{
			name:        "text column is not numeric",
			input:       "Student,Semester,Math,Grade\nAlice,S1,40,F\nBob,S1,90,A\n",
			wantColumns: []string{"Math"},
			wantRecords: 2,
		},
		{
			name:        "missing markers",
			input:       "Student,Semester,Math,Physics\nAlice,S1,NaN,60\nBob,S1,70,NA\n",
			wantColumns: []string{"Math", "Physics"},
			wantRecords: 2,
		},
		{
			name:        "custom identifier columns",
			input:       "name,term,Math\nAlice,2023,40\n",
			opts:        ParseOptions{StudentColumn: "Name", SemesterColumn: "Term"},
			wantColumns: []string{"Math"},
			wantRecords: 1,
		},
		{
			name:     "no header",
			input:    "Name,Math\nAlice,40\n",
			wantType: errors.ErrTypeParsing,
		},
		{
			name:     "missing student",
			input:    "Student,Semester,Math\n,S1,40\n",
			wantType: errors.ErrTypeValidation,
		},
		{
			name:     "negative score",
			input:    "Student,Semester,Math\nAlice,S1,-5\n",
			wantType: errors.ErrTypeValidation,
		},
		{
			name:     "malformed quoting",
			input:    "Student,Semester,Math\n\"Alice,S1,40\n",
			wantType: errors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := newTestParser(tt.opts).ParseCSV(context.Background(), strings.NewReader(tt.input))
			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, rs.Columns)
			assert.Len(t, rs.Records, tt.wantRecords)
		})
	}
}

func TestParseCSVMissingMarkers(t *testing.T) {
	rs, err := newTestParser(ParseOptions{}).ParseCSV(context.Background(),
		strings.NewReader("Student,Semester,Math,Physics\nAlice,S1,NaN,60\n"))
	require.NoError(t, err)

	_, ok := rs.Records[0].Score("Math")
	assert.False(t, ok)
	v, ok := rs.Records[0].Score("Physics")
	assert.True(t, ok)
	assert.Equal(t, 60.0, v)
}

func TestParseCSVNonFiniteScores(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "inf", value: "inf"},
		{name: "signed", value: "+Inf"},
		{name: "spelled out", value: "infinity"},
		{name: "negative", value: "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "Student,Semester,Math,Physics\nAnn,1," + tt.value + ",70\nBen,1,80,90\n"
			rs, err := newTestParser(ParseOptions{}).ParseCSV(context.Background(), strings.NewReader(input))
			require.NoError(t, err)

			assert.Equal(t, []string{"Physics"}, rs.Columns)
			_, ok := rs.Records[0].Score("Math")
			assert.False(t, ok)
			assert.Equal(t, tt.value, rs.Records[0].Attributes["Math"])
		})
	}
}

func TestParseScore(t *testing.T) {
	v, err := parseScore(" 72.5 ")
	require.NoError(t, err)
	assert.Equal(t, 72.5, v)

	for _, s := range []string{"inf", "-Infinity", "NaN", "abc"} {
		_, err := parseScore(s)
		assert.Error(t, err, s)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Student,Semester,Math\nAlice,S1,40\n"), 0644))

	p := newTestParser(ParseOptions{})

	rs, err := p.ParseFile(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "scores.json"))
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))

	_, err = p.ParseFile(context.Background(), filepath.Join(dir, "absent.csv"))
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))

	badPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(badPath, []byte("Student,Semester,Math\n,S1,40\n"), 0644))
	_, err = p.ParseFile(context.Background(), badPath)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, badPath, appErr.Context["file"])
	assert.Equal(t, 2, appErr.Context["line"])
}

func TestValidate(t *testing.T) {
	p := newTestParser(ParseOptions{})

	assert.NoError(t, p.Validate(&domain.RecordSet{
		Columns: []string{"Math"},
		Records: []domain.Record{{Student: "A", Semester: "S1", Scores: map[string]float64{"Math": 1}}},
	}))

	err := p.Validate(&domain.RecordSet{
		Records: []domain.Record{{Student: "A"}},
	})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}
