package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

// Default identifier column names
const (
	DefaultStudentColumn  = "Student"
	DefaultSemesterColumn = "Semester"
)

// ParseOptions configures how score tables are read.
type ParseOptions struct {
	// Sheet selects the workbook sheet; empty means the first sheet with a
	// recognizable header row.
	Sheet          string
	StudentColumn  string
	SemesterColumn string
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.StudentColumn == "" {
		o.StudentColumn = DefaultStudentColumn
	}
	if o.SemesterColumn == "" {
		o.SemesterColumn = DefaultSemesterColumn
	}
	return o
}

// Parser reads score tables from spreadsheets and CSV files.
type Parser struct {
	logger   *slog.Logger
	opts     ParseOptions
	validate *validator.Validate
}

// NewParser creates a parser. A nil logger uses slog.Default().
func NewParser(logger *slog.Logger, opts ParseOptions) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:   logger.With(slog.String("component", "parser")),
		opts:     opts.withDefaults(),
		validate: validator.New(),
	}
}

// ParseFile reads path, choosing the format from its extension.
func (p *Parser) ParseFile(ctx context.Context, path string) (*domain.RecordSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return p.ParseWorkbook(ctx, path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewParsingError("failed to open file", err).WithContext("file", path)
		}
		defer f.Close()
		rs, err := p.ParseCSV(ctx, f)
		if err != nil {
			return nil, withFile(err, path)
		}
		return rs, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported file type %q", filepath.Ext(path)), nil).
			WithContext("file", path)
	}
}

// ParseWorkbook reads a score table from an Excel workbook.
func (p *Parser) ParseWorkbook(ctx context.Context, path string) (*domain.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("file", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if p.opts.Sheet != "" {
		sheets = []string{p.opts.Sheet}
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			if p.opts.Sheet != "" {
				return nil, errors.NewParsingError("failed to read sheet", err).
					WithContext("file", path).WithContext("sheet", name)
			}
			continue
		}
		if p.findHeader(rows) < 0 {
			p.logger.DebugContext(ctx, "Sheet has no score header", slog.String("sheet", name))
			continue
		}

		p.logger.InfoContext(ctx, "Found score table",
			slog.String("file", path),
			slog.String("sheet", name),
			slog.Int("total_rows", len(rows)))

		rs, err := p.ParseRows(ctx, rows)
		if err != nil {
			return nil, withFile(err, path)
		}
		return rs, nil
	}

	return nil, errors.NewParsingError("could not find a sheet with a score header", nil).
		WithContext("file", path)
}

// ParseCSV reads a score table from CSV.
func (p *Parser) ParseCSV(ctx context.Context, r io.Reader) (*domain.RecordSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		// exporters may write a UTF-8 BOM
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return p.ParseRows(ctx, rows)
}

// ParseRows builds a record set from raw rows. The header is the first row
// naming both identifier columns; numeric columns are those whose non-empty
// cells all parse as numbers.
func (p *Parser) ParseRows(ctx context.Context, rows [][]string) (*domain.RecordSet, error) {
	headerRow := p.findHeader(rows)
	if headerRow < 0 {
		return nil, errors.NewParsingError(
			fmt.Sprintf("could not find header row with %q and %q columns", p.opts.StudentColumn, p.opts.SemesterColumn), nil)
	}

	header := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		header[i] = strings.TrimSpace(h)
	}
	studentIdx := indexOf(header, p.opts.StudentColumn)
	semesterIdx := indexOf(header, p.opts.SemesterColumn)

	type dataRow struct {
		line  int
		cells []string
	}
	var data []dataRow
	for i := headerRow + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		data = append(data, dataRow{line: i + 1, cells: rows[i]})
	}

	numeric := make([]bool, len(header))
	for col, name := range header {
		if col == studentIdx || col == semesterIdx || name == "" {
			continue
		}
		numeric[col] = true
		for _, row := range data {
			v := cell(row.cells, col)
			if v == "" {
				continue
			}
			if _, err := parseScore(v); err != nil {
				numeric[col] = false
				break
			}
		}
	}

	rs := &domain.RecordSet{}
	for col, name := range header {
		if numeric[col] {
			rs.Columns = append(rs.Columns, name)
		}
	}

	rs.Records = make([]domain.Record, 0, len(data))
	for _, row := range data {
		rec := domain.Record{
			Student:  cell(row.cells, studentIdx),
			Semester: cell(row.cells, semesterIdx),
			Scores:   make(map[string]float64, len(rs.Columns)),
		}
		for col, name := range header {
			if col == studentIdx || col == semesterIdx || name == "" {
				continue
			}
			v := cell(row.cells, col)
			if v == "" {
				continue
			}
			if numeric[col] {
				score, _ := parseScore(v)
				rec.Scores[name] = score
				continue
			}
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[name] = v
		}

		if err := p.validate.Struct(rec); err != nil {
			return nil, errors.NewAppValidationError(fmt.Sprintf("invalid record on line %d", row.line), err).
				WithContext("line", row.line)
		}
		rs.Records = append(rs.Records, rec)
	}

	p.logger.DebugContext(ctx, "Parsed score table",
		slog.Int("records", len(rs.Records)),
		slog.Any("numeric_columns", rs.Columns))

	return rs, nil
}

// Validate checks every record of rs.
func (p *Parser) Validate(rs *domain.RecordSet) error {
	if err := p.validate.Struct(rs); err != nil {
		return errors.NewAppValidationError("invalid record set", err)
	}
	return nil
}

func (p *Parser) findHeader(rows [][]string) int {
	for i, row := range rows {
		trimmed := make([]string, len(row))
		for j, c := range row {
			trimmed[j] = strings.TrimSpace(c)
		}
		if indexOf(trimmed, p.opts.StudentColumn) >= 0 && indexOf(trimmed, p.opts.SemesterColumn) >= 0 {
			return i
		}
	}
	return -1
}

// parseScore parses a finite number.
func parseScore(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("score %q is not finite", s)
	}
	return v, nil
}

// missingMarkers are cell values read as empty.
var missingMarkers = map[string]struct{}{
	"na": {}, "n/a": {}, "nan": {}, "null": {}, "none": {}, "#n/a": {},
}

// cell returns the trimmed cell at idx, or "" when absent or marked missing.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[idx])
	if _, ok := missingMarkers[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func withFile(err error, path string) error {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.WithContext("file", path)
	}
	return err
}
