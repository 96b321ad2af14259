package presenter

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"scorecli/internal/dataprocessing"
	"scorecli/internal/files"
	"scorecli/internal/store"
	"scorecli/pkg/contracts/domain"
)

// TablePresenter renders analysis results as terminal tables
type TablePresenter struct {
	out       io.Writer
	precision int
	heading   *color.Color
	warn      *color.Color
	good      *color.Color
	logger    *slog.Logger
}

// NewTablePresenter creates a presenter writing to out. Colors are only used
// when useColor is true.
func NewTablePresenter(out io.Writer, precision int, useColor bool, logger *slog.Logger) *TablePresenter {
	if logger == nil {
		logger = slog.Default()
	}
	p := &TablePresenter{
		out:       out,
		precision: precision,
		heading:   color.New(color.FgCyan, color.Bold),
		warn:      color.New(color.FgRed),
		good:      color.New(color.FgGreen),
		logger:    logger.With(slog.String("component", "table_presenter")),
	}
	if !useColor {
		p.heading.DisableColor()
		p.warn.DisableColor()
		p.good.DisableColor()
	}
	return p
}

// RenderReport writes every section of the report
func (p *TablePresenter) RenderReport(report domain.AnalysisReport) {
	p.section("Dataset")
	p.table([]string{"Records", "Students", "Subjects", "Source"}, [][]string{{
		strconv.Itoa(report.RecordCount),
		strconv.Itoa(report.StudentCount),
		strings.Join(report.Subjects, ", "),
		report.Source,
	}})

	p.section("Students Who Failed")
	p.list(report.FailedStudents, p.warn)

	p.section("Average Scores by Semester")
	p.RenderSemesterAverages(report.Subjects, report.SemesterAverages)

	p.section("Highest Average")
	rows := make([][]string, len(report.TopStudents))
	for i, s := range report.TopStudents {
		rows[i] = []string{s.Student, p.score(s.Average)}
	}
	p.table([]string{"Student", "Average"}, rows)

	p.section("Lowest Scoring Subject")
	if report.LowestSubject == nil {
		p.list(nil, nil)
	} else {
		p.table([]string{"Subject", "Average"}, [][]string{{report.LowestSubject.Subject, p.score(report.LowestSubject.Average)}})
	}

	p.section("Students Who Improved")
	p.list(report.ImprovedStudents, p.good)

	p.section("Average Score per Subject")
	rows = make([][]string, len(report.SubjectOverview))
	for i, s := range report.SubjectOverview {
		rows[i] = []string{s.Subject, p.score(s.Average)}
	}
	p.table([]string{"Subject", "Average"}, rows)

	p.section("Average Score per Semester")
	rows = make([][]string, len(report.SemesterOverview))
	for i, s := range report.SemesterOverview {
		rows[i] = []string{s.Semester, p.score(s.Average)}
	}
	p.table([]string{"Semester", "Average"}, rows)

	p.logger.Debug("Report rendered", slog.String("report_id", report.ID))
}

// RenderSemesterAverages writes the semester by subject table. Subjects
// without observations in a semester show as "-".
func (p *TablePresenter) RenderSemesterAverages(subjects []string, rows []domain.SemesterAverage) {
	body := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, 0, len(subjects)+1)
		line = append(line, row.Semester)
		for _, s := range subjects {
			if v, ok := row.Averages[s]; ok {
				line = append(line, p.score(v))
			} else {
				line = append(line, "-")
			}
		}
		body[i] = line
	}
	p.table(append([]string{"Semester"}, subjects...), body)
}

// RenderRuns writes stored runs
func (p *TablePresenter) RenderRuns(runs []store.Run) {
	p.section("Stored Runs")
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(r.SemesterCount),
			strings.Join(r.Subjects, ", "),
			r.Source,
		}
	}
	p.table([]string{"ID", "Created", "Semesters", "Subjects", "Source"}, rows)
}

// RenderSources writes the score files found in dir
func (p *TablePresenter) RenderSources(dir string, found []files.FileInfo) {
	p.section("Sources in " + dir)
	rows := make([][]string, len(found))
	for i, f := range found {
		rows[i] = []string{f.Name, strconv.FormatInt(f.Size, 10), f.ModTime.Local().Format(time.DateTime)}
	}
	p.table([]string{"File", "Bytes", "Modified"}, rows)
}

// RenderCleaning writes the statistics of a cleaning pass
func (p *TablePresenter) RenderCleaning(strategy string, stats dataprocessing.CleaningStatistics, path string) {
	p.section("Cleaning")
	p.table([]string{"Strategy", "Input", "Duplicates", "Dropped", "Filled", "Output"}, [][]string{{
		strategy,
		strconv.Itoa(stats.InputRows),
		strconv.Itoa(stats.DuplicatesRemoved),
		strconv.Itoa(stats.RowsDropped),
		strconv.Itoa(stats.CellsFilled),
		strconv.Itoa(stats.OutputRows),
	}})
	if path != "" {
		p.good.Fprintf(p.out, "Cleaned data written to %s\n", path)
	}
}

// RenderMessage writes a highlighted one-line message
func (p *TablePresenter) RenderMessage(format string, args ...interface{}) {
	p.good.Fprintf(p.out, format+"\n", args...)
}

func (p *TablePresenter) section(title string) {
	fmt.Fprintln(p.out)
	p.heading.Fprintf(p.out, "== %s ==\n", title)
}

func (p *TablePresenter) list(items []string, c *color.Color) {
	if len(items) == 0 {
		fmt.Fprintln(p.out, "(none)")
		return
	}
	for _, item := range items {
		c.Fprintf(p.out, "  - %s\n", item)
	}
}

func (p *TablePresenter) table(header []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "(none)")
		return
	}
	t := tablewriter.NewWriter(p.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.AppendBulk(rows)
	t.Render()
}

func (p *TablePresenter) score(v float64) string {
	return strconv.FormatFloat(v, 'f', p.precision, 64)
}
