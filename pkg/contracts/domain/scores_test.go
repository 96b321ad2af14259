package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *RecordSet {
	return &RecordSet{
		Columns: []string{"Math", "Physics"},
		Records: []Record{
			{Student: "Alice", Semester: "S2", Scores: map[string]float64{"Math": 60, "Physics": 70}},
			{Student: "Bob", Semester: "S10", Scores: map[string]float64{"Math": 40}},
			{Student: "Alice", Semester: "S1", Scores: map[string]float64{"Math": 75, "Physics": 80}},
		},
	}
}

func TestCompareSemesters(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"S1", "S1", 0},
		{"S2", "S10", -1},
		{"S10", "S2", 1},
		{"2", "10", -1},
		{"1.5", "1.25", 1},
		{"Fall 2023", "Fall 2024", -1},
		{"S02", "S2", -1},
		{"A", "B", -1},
		{"S1", "S1a", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareSemesters(tt.a, tt.b))
		})
	}
}

func TestRecordSet_Queries(t *testing.T) {
	rs := sample()

	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, []string{"Alice", "Bob"}, rs.Students())
	assert.Equal(t, []string{"S1", "S2", "S10"}, rs.Semesters())

	cells, err := rs.Column("Physics")
	require.NoError(t, err)
	assert.Equal(t, []Cell{{70, true}, {0, false}, {80, true}}, cells)

	v, ok, err := rs.Value(1, "Physics")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)

	_, _, err = rs.Value(5, "Math")
	assert.Error(t, err)
	_, err = rs.Column("History")
	assert.Error(t, err)

	var nilSet *RecordSet
	assert.Zero(t, nilSet.Len())
}

func TestRecordSet_Mutations(t *testing.T) {
	rs := sample()
	orig := rs.Clone()

	require.NoError(t, rs.AddColumn("Art", []Cell{{90, true}, {0, false}, {50, true}}))
	assert.Equal(t, []string{"Math", "Physics", "Art"}, rs.Columns)
	assert.Error(t, rs.AddColumn("Art", make([]Cell, 3)))
	assert.Error(t, rs.AddColumn("Music", make([]Cell, 1)))

	rs.AddRow(Record{Student: "Carol", Semester: "S1", Scores: map[string]float64{"Chemistry": 88, "Math": 70}})
	assert.Equal(t, []string{"Math", "Physics", "Art", "Chemistry"}, rs.Columns)
	assert.Equal(t, 4, rs.Len())

	require.NoError(t, rs.RemoveColumn("Physics"))
	assert.False(t, rs.HasColumn("Physics"))
	_, ok := rs.Records[0].Score("Physics")
	assert.False(t, ok)
	assert.Error(t, rs.RemoveColumn("Physics"))

	// the clone is untouched
	assert.Equal(t, []string{"Math", "Physics"}, orig.Columns)
	v, ok := orig.Records[0].Score("Physics")
	assert.True(t, ok)
	assert.Equal(t, 70.0, v)
}

func TestRecord_Key(t *testing.T) {
	a := Record{Student: "Alice", Semester: "S1", Scores: map[string]float64{"Math": 60, "Physics": 70}}
	b := a.Clone()
	assert.Equal(t, a.Key(), b.Key())

	b.Scores["Math"] = 61
	assert.NotEqual(t, a.Key(), b.Key())

	c := a.Clone()
	c.Attributes = map[string]string{"Class": "A"}
	assert.NotEqual(t, a.Key(), c.Key())
}
