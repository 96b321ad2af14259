package dataprocessing

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecli/internal/errors"
	"scorecli/pkg/contracts/domain"
)

func dirtySet() *domain.RecordSet {
	return &domain.RecordSet{
		Columns: []string{"Math", "Physics"},
		Records: []domain.Record{
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{"Math": 40, "Physics": 60}},
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{"Math": 40, "Physics": 60}},
			{Student: "Ben", Semester: "S1", Scores: map[string]float64{"Math": 71}},
			{Student: "Cid", Semester: "S1", Scores: map[string]float64{"Physics": 81}},
		},
	}
}

func TestNewCleanerRemovesDuplicates(t *testing.T) {
	in := dirtySet()
	c := NewCleaner(nil, in)

	assert.Equal(t, 3, c.Data().Len())
	assert.Equal(t, 1, c.Statistics().DuplicatesRemoved)
	assert.Equal(t, 4, c.Statistics().InputRows)
	assert.Equal(t, 4, in.Len(), "input must not change")
}

func TestNewCleanerKeepsNearDuplicates(t *testing.T) {
	rs := &domain.RecordSet{
		Columns: []string{"Math"},
		Records: []domain.Record{
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{"Math": 40}},
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{"Math": 41}},
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{}},
		},
	}
	assert.Equal(t, 3, NewCleaner(nil, rs).Data().Len())
}

func TestDropMissing(t *testing.T) {
	c := NewCleaner(nil, dirtySet())
	out := c.DropMissing()

	require.Len(t, out.Records, 1)
	assert.Equal(t, "Ann", out.Records[0].Student)
	assert.Equal(t, []string{"Math", "Physics"}, out.Columns)
	assert.Equal(t, 2, c.Statistics().RowsDropped)
}

func TestFillWithMean(t *testing.T) {
	in := dirtySet()
	c := NewCleaner(nil, in)
	out := c.FillWithMean()

	require.Len(t, out.Records, 3)
	// Math mean (40+71)/2 = 55.5 rounds to 56; Physics (60+81)/2 = 70.5 rounds to 70
	assert.Equal(t, 56.0, out.Records[2].Scores["Math"])
	assert.Equal(t, 70.0, out.Records[1].Scores["Physics"])
	assert.Equal(t, 40.0, out.Records[0].Scores["Math"])
	assert.Equal(t, 2, c.Statistics().CellsFilled)

	_, ok := in.Records[2].Scores["Math"]
	assert.False(t, ok, "input must not change")
}

func TestFillWithMeanRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{name: "half rounds down to even", scores: []float64{72, 73}, want: 72},
		{name: "half rounds up to even", scores: []float64{73, 74}, want: 74},
		{name: "below half", scores: []float64{70, 70, 71}, want: 70},
		{name: "above half", scores: []float64{70, 71, 71}, want: 71},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &domain.RecordSet{Columns: []string{"Math"}}
			for i, v := range tt.scores {
				rs.Records = append(rs.Records, domain.Record{
					Student:  "Student" + strconv.Itoa(i),
					Semester: "S1",
					Scores:   map[string]float64{"Math": v},
				})
			}
			rs.Records = append(rs.Records, domain.Record{Student: "Gap", Semester: "S1", Scores: map[string]float64{}})

			out := NewCleaner(nil, rs).FillWithMean()
			last := out.Records[len(out.Records)-1]
			assert.Equal(t, tt.want, last.Scores["Math"])
		})
	}
}

func TestFillWithMeanEmptyColumn(t *testing.T) {
	rs := &domain.RecordSet{
		Columns: []string{"Math", "Art"},
		Records: []domain.Record{
			{Student: "Ann", Semester: "S1", Scores: map[string]float64{"Math": 40}},
		},
	}
	out := NewCleaner(nil, rs).FillWithMean()

	_, ok := out.Records[0].Scores["Art"]
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	tests := []struct {
		strategy string
		want     int
		wantErr  bool
	}{
		{strategy: StrategyNone, want: 3},
		{strategy: "", want: 3},
		{strategy: StrategyDropNA, want: 1},
		{strategy: StrategyMean, want: 3},
		{strategy: "median", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			out, err := NewCleaner(nil, dirtySet()).Apply(tt.strategy)
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Len())
		})
	}
}

func TestNewCleanerNil(t *testing.T) {
	c := NewCleaner(nil, nil)
	assert.Equal(t, 0, c.Data().Len())
	assert.Equal(t, 0, c.DropMissing().Len())
}

func TestMerge(t *testing.T) {
	a := &domain.RecordSet{
		Columns: []string{"Math", "Physics"},
		Records: []domain.Record{{Student: "Alice", Semester: "S1", Scores: map[string]float64{"Math": 60}}},
	}
	b := &domain.RecordSet{
		Columns: []string{"Physics", "Chemistry"},
		Records: []domain.Record{{Student: "Bob", Semester: "S1", Scores: map[string]float64{"Chemistry": 70}}},
	}

	merged := Merge(a, nil, b)

	assert.Equal(t, []string{"Math", "Physics", "Chemistry"}, merged.Columns)
	require.Len(t, merged.Records, 2)
	assert.Equal(t, "Alice", merged.Records[0].Student)
	assert.Equal(t, "Bob", merged.Records[1].Student)

	merged.Records[0].Scores["Math"] = 1
	assert.Equal(t, 60.0, a.Records[0].Scores["Math"])
}
