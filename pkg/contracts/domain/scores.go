package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one student-semester observation with its subject scores.
// A missing score cell is represented by an absent key in Scores.
type Record struct {
	Student    string             `json:"student" validate:"required"`
	Semester   string             `json:"semester" validate:"required"`
	Scores     map[string]float64 `json:"scores" validate:"dive,gte=0"`
	Attributes map[string]string  `json:"attributes,omitempty"`
}

// Score returns the score recorded for subject, if any.
func (r Record) Score(subject string) (float64, bool) {
	v, ok := r.Scores[subject]
	return v, ok
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := Record{Student: r.Student, Semester: r.Semester}
	if r.Scores != nil {
		out.Scores = make(map[string]float64, len(r.Scores))
		for k, v := range r.Scores {
			out.Scores[k] = v
		}
	}
	if r.Attributes != nil {
		out.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Key returns a canonical representation of every field of the record.
// Two records with the same key are exact duplicates.
func (r Record) Key() string {
	var b strings.Builder
	b.WriteString(r.Student)
	b.WriteByte(0)
	b.WriteString(r.Semester)
	for _, k := range sortedKeys(r.Scores) {
		fmt.Fprintf(&b, "\x00%s=%s", k, strconv.FormatFloat(r.Scores[k], 'g', -1, 64))
	}
	attrKeys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		attrKeys = append(attrKeys, k)
	}
	sort.Strings(attrKeys)
	for _, k := range attrKeys {
		fmt.Fprintf(&b, "\x01%s=%s", k, r.Attributes[k])
	}
	return b.String()
}

// RecordSet is the tabular dataset under analysis. Columns lists the numeric
// subject columns in declaration order.
type RecordSet struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records" validate:"dive"`
}

// Len returns the number of records.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// HasColumn reports whether name is one of the numeric columns.
func (rs *RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Cell is one possibly-empty score cell of a column.
type Cell struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Column returns every cell of a numeric column in record order.
func (rs *RecordSet) Column(name string) ([]Cell, error) {
	if !rs.HasColumn(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	cells := make([]Cell, len(rs.Records))
	for i, r := range rs.Records {
		v, ok := r.Scores[name]
		cells[i] = Cell{Value: v, Valid: ok}
	}
	return cells, nil
}

// AddColumn adds a numeric column. cells must hold one entry per record;
// invalid cells are left empty.
func (rs *RecordSet) AddColumn(name string, cells []Cell) error {
	if rs.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(cells) != len(rs.Records) {
		return fmt.Errorf("column %q has %d cells, want %d", name, len(cells), len(rs.Records))
	}
	rs.Columns = append(rs.Columns, name)
	for i, c := range cells {
		if !c.Valid {
			continue
		}
		if rs.Records[i].Scores == nil {
			rs.Records[i].Scores = make(map[string]float64)
		}
		rs.Records[i].Scores[name] = c.Value
	}
	return nil
}

// Row returns the record at index i.
func (rs *RecordSet) Row(i int) (Record, error) {
	if i < 0 || i >= len(rs.Records) {
		return Record{}, fmt.Errorf("row %d out of range [0,%d)", i, len(rs.Records))
	}
	return rs.Records[i], nil
}

// Value returns the score at row i in column. The boolean is false when the
// cell is empty.
func (rs *RecordSet) Value(i int, column string) (float64, bool, error) {
	if !rs.HasColumn(column) {
		return 0, false, fmt.Errorf("column %q not found", column)
	}
	row, err := rs.Row(i)
	if err != nil {
		return 0, false, err
	}
	v, ok := row.Scores[column]
	return v, ok, nil
}

// AddRow appends a record. Score keys unknown to the schema are added as new
// columns in the order they are encountered.
func (rs *RecordSet) AddRow(r Record) {
	for _, k := range sortedKeys(r.Scores) {
		if !rs.HasColumn(k) {
			rs.Columns = append(rs.Columns, k)
		}
	}
	rs.Records = append(rs.Records, r.Clone())
}

// RemoveColumn drops a numeric column from the schema and every record.
func (rs *RecordSet) RemoveColumn(name string) error {
	idx := -1
	for i, c := range rs.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	rs.Columns = append(rs.Columns[:idx:idx], rs.Columns[idx+1:]...)
	for i := range rs.Records {
		delete(rs.Records[i].Scores, name)
	}
	return nil
}

// Clone returns a deep copy of the record set.
func (rs *RecordSet) Clone() *RecordSet {
	out := &RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Records: make([]Record, len(rs.Records)),
	}
	for i, r := range rs.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Students returns the distinct student identifiers in first-occurrence order.
func (rs *RecordSet) Students() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records {
		if _, ok := seen[r.Student]; ok {
			continue
		}
		seen[r.Student] = struct{}{}
		out = append(out, r.Student)
	}
	return out
}

// Semesters returns the distinct semester keys in ascending order.
func (rs *RecordSet) Semesters() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rs.Records {
		if _, ok := seen[r.Semester]; ok {
			continue
		}
		seen[r.Semester] = struct{}{}
		out = append(out, r.Semester)
	}
	SortSemesters(out)
	return out
}

// CompareSemesters orders semester keys. Keys that both parse as numbers are
// compared numerically; otherwise runs of digits compare by value, so "S2"
// sorts before "S10".
func CompareSemesters(a, b string) int {
	if a == b {
		return 0
	}
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return strings.Compare(a, b)
	}

	x, y := a, b
	for x != "" && y != "" {
		cx, restX := nextChunk(x)
		cy, restY := nextChunk(y)
		if isDigit(cx[0]) && isDigit(cy[0]) {
			tx := strings.TrimLeft(cx, "0")
			ty := strings.TrimLeft(cy, "0")
			if len(tx) != len(ty) {
				if len(tx) < len(ty) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(tx, ty); c != 0 {
				return c
			}
		} else if c := strings.Compare(cx, cy); c != 0 {
			return c
		}
		x, y = restX, restY
	}
	switch {
	case x == "" && y != "":
		return -1
	case x != "" && y == "":
		return 1
	}
	return strings.Compare(a, b)
}

// SortSemesters sorts semester keys in place using CompareSemesters.
func SortSemesters(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return CompareSemesters(keys[i], keys[j]) < 0
	})
}

func nextChunk(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
