package presenter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scorecli/internal/dataprocessing"
	"scorecli/internal/files"
	"scorecli/internal/store"
	"scorecli/pkg/contracts/domain"
)

func sampleReport() domain.AnalysisReport {
	return domain.AnalysisReport{
		RecordCount:    4,
		StudentCount:   2,
		Subjects:       []string{"Math", "Physics"},
		FailedStudents: []string{"Bob"},
		SemesterAverages: []domain.SemesterAverage{
			{Semester: "S1", Averages: map[string]float64{"Math": 50, "Physics": 75}},
			{Semester: "S2", Averages: map[string]float64{"Math": 52.5}},
		},
		TopStudents:      []domain.StudentAverage{{Student: "Alice", Average: 71.25}},
		LowestSubject:    &domain.SubjectAverage{Subject: "Math", Average: 51.25},
		ImprovedStudents: []string{"Alice"},
		SubjectOverview:  []domain.SubjectAverage{{Subject: "Math", Average: 51.25}, {Subject: "Physics", Average: 75}},
		SemesterOverview: []domain.SemesterOverview{{Semester: "S1", Average: 62.5}, {Semester: "S2", Average: 52.5}},
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	NewTablePresenter(&buf, 2, false, nil).RenderReport(sampleReport())
	out := buf.String()

	for _, want := range []string{
		"== Students Who Failed ==",
		"  - Bob",
		"== Average Scores by Semester ==",
		"71.25",
		"51.25",
		"== Students Who Improved ==",
		"  - Alice",
		"62.50",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderSemesterAverages_MissingSubject(t *testing.T) {
	var buf bytes.Buffer
	p := NewTablePresenter(&buf, 1, false, nil)
	p.RenderSemesterAverages([]string{"Math", "Physics"}, sampleReport().SemesterAverages)

	lines := strings.Split(buf.String(), "\n")
	var s2 string
	for _, l := range lines {
		if strings.Contains(l, "S2") {
			s2 = l
		}
	}
	assert.Contains(t, s2, "52.5")
	assert.Contains(t, s2, "-")
}

func TestRenderReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTablePresenter(&buf, 2, false, nil).RenderReport(domain.AnalysisReport{})

	assert.Contains(t, buf.String(), "(none)")
}

func TestRenderRunsAndCleaning(t *testing.T) {
	var buf bytes.Buffer
	p := NewTablePresenter(&buf, 2, false, nil)

	p.RenderRuns([]store.Run{{ID: "run-1", CreatedAt: time.Now(), Subjects: []string{"Math"}, SemesterCount: 2, Source: "a.csv"}})
	p.RenderCleaning("dropna", dataprocessing.CleaningStatistics{InputRows: 5, DuplicatesRemoved: 1, RowsDropped: 1, OutputRows: 3}, "/tmp/clean.csv")

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "a.csv")
	assert.Contains(t, out, "dropna")
	assert.Contains(t, out, "Cleaned data written to /tmp/clean.csv")
}

func TestRenderSources(t *testing.T) {
	var buf bytes.Buffer
	p := NewTablePresenter(&buf, 2, false, nil)

	p.RenderSources("/data", []files.FileInfo{{Name: "s1.csv", Size: 42, ModTime: time.Now()}})
	assert.Contains(t, buf.String(), "== Sources in /data ==")
	assert.Contains(t, buf.String(), "s1.csv")
	assert.Contains(t, buf.String(), "42")

	buf.Reset()
	p.RenderSources("/data", nil)
	assert.Contains(t, buf.String(), "(none)")
}
