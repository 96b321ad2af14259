package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"scorecli/pkg/contracts/domain"
)

// SemesterOneCSV holds three students in S1. Carol has no Physics score.
const SemesterOneCSV = `Student,Semester,Math,Physics
Alice,S1,60,70
Bob,S1,40,80
Carol,S1,90,
`

// SemesterTwoCSV continues SemesterOneCSV. Alice and Carol improve, Bob fails
// both semesters.
const SemesterTwoCSV = `Student,Semester,Math,Physics
Alice,S2,75,80
Bob,S2,30,70
Carol,S2,95,85
`

// WriteFile writes content to dir/name, creating dir if needed, and returns
// the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// SampleRecordSet returns the records of SemesterOneCSV and SemesterTwoCSV
func SampleRecordSet() *domain.RecordSet {
	rs := &domain.RecordSet{Columns: []string{"Math", "Physics"}}
	add := func(student, semester string, scores map[string]float64) {
		rs.Records = append(rs.Records, domain.Record{Student: student, Semester: semester, Scores: scores})
	}
	add("Alice", "S1", map[string]float64{"Math": 60, "Physics": 70})
	add("Bob", "S1", map[string]float64{"Math": 40, "Physics": 80})
	add("Carol", "S1", map[string]float64{"Math": 90})
	add("Alice", "S2", map[string]float64{"Math": 75, "Physics": 80})
	add("Bob", "S2", map[string]float64{"Math": 30, "Physics": 70})
	add("Carol", "S2", map[string]float64{"Math": 95, "Physics": 85})
	return rs
}
