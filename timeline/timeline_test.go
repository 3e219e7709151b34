package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpcopeland/survtime/errors"
)

func TestIntervalGeometry(t *testing.T) {
	a := Interval{PersonID: "p1", Start: 0, Stop: 10, Label: 1}
	b := Interval{PersonID: "p1", Start: 5, Stop: 15, Label: 2}
	c := Interval{PersonID: "p1", Start: 11, Stop: 12, Label: 1}

	assert.Equal(t, int64(11), a.Length())
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
	assert.True(t, a.Contains(Interval{Start: 3, Stop: 7}))
	assert.False(t, a.Contains(b))
	assert.False(t, Interval{Start: 9, Stop: 3}.Valid())
}

func TestByPersonSortsDeterministically(t *testing.T) {
	ivs := []Interval{
		{PersonID: "p2", Start: 50, Stop: 60},
		{PersonID: "p1", Start: 10, Stop: 20},
		{PersonID: "p1", Start: 0, Stop: 9},
		{PersonID: "p2", Start: 0, Stop: 49},
	}

	ids, groups := ByPerson(ivs)
	require.Equal(t, []string{"p1", "p2"}, ids)
	assert.Equal(t, Day(0), groups["p1"][0].Start)
	assert.Equal(t, Day(10), groups["p1"][1].Start)
	assert.Len(t, groups["p2"], 2)
}

func TestIndexWindows(t *testing.T) {
	windows := []Window{
		{PersonID: "p1", Entry: 0, Exit: 100},
		{PersonID: "p2", Entry: 10, Exit: 40},
	}
	index, err := IndexWindows(windows)
	require.NoError(t, err)
	assert.Equal(t, Day(100), index["p1"].Exit)

	_, err = IndexWindows(nil)
	assert.True(t, errors.IsDataQualityError(err))

	_, err = IndexWindows([]Window{{PersonID: "p1", Entry: 5, Exit: 1}})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = IndexWindows(append(windows, Window{PersonID: "p1", Entry: 0, Exit: 1}))
	assert.True(t, errors.IsSchemaError(err))
}

func TestReportCollapsesRepeatedWarnings(t *testing.T) {
	r := NewReport()
	require.NotEmpty(t, r.RunID)

	r.Warnf(WarnInvalidInterval, "p1", "dropped interval [%d,%d]", 9, 3)
	r.Warnf(WarnInvalidInterval, "p1", "dropped interval [%d,%d]", 8, 2)
	r.Warnf(WarnIterationCap, "", "merge did not converge")

	warnings := r.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, 2, warnings[0].Count)
	assert.Equal(t, WarnIterationCap, warnings[1].Code)
	assert.True(t, r.HasWarnings())
}

func TestSummarize(t *testing.T) {
	ivs := []Interval{
		{PersonID: "p1", Start: 0, Stop: 9, Label: 0},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
		{PersonID: "p1", Start: 21, Stop: 100, Label: 0},
		{PersonID: "p2", Start: 0, Stop: 49, Label: 2},
	}

	s := Summarize(ivs, 0)
	assert.Equal(t, 2, s.Persons)
	assert.Equal(t, 4, s.Intervals)
	assert.Equal(t, int64(151), s.TotalDays)
	assert.Equal(t, int64(61), s.ExposedDays)
	assert.Equal(t, int64(90), s.UnexposedDays)
	assert.InDelta(t, 100*61.0/151.0, s.PercentExposed, 1e-9)
}

func TestFixedPointConverges(t *testing.T) {
	r := NewReport()
	calls := 0
	converged := FixedPoint("merge", "p1", 100, r, func() bool {
		calls++
		return calls < 5
	})

	assert.True(t, converged)
	assert.Equal(t, 5, calls)
	assert.False(t, r.HasWarnings())
}

func TestFixedPointCapRecordsWarning(t *testing.T) {
	r := NewReport()
	converged := FixedPoint("layer", "p9", 25, r, func() bool { return true })

	assert.False(t, converged)
	warnings := r.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnIterationCap, warnings[0].Code)
	assert.Equal(t, "p9", warnings[0].PersonID)
}

func TestCheckCoverage(t *testing.T) {
	windows := map[string]Window{"p1": {PersonID: "p1", Entry: 0, Exit: 100}}

	tiled := []Interval{
		{PersonID: "p1", Start: 0, Stop: 9, Label: 0},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
		{PersonID: "p1", Start: 21, Stop: 100, Label: 0},
	}
	assert.NoError(t, CheckCoverage(tiled, windows))
	assert.NoError(t, CheckConservation(tiled, windows))

	gap := []Interval{
		{PersonID: "p1", Start: 0, Stop: 9, Label: 0},
		{PersonID: "p1", Start: 11, Stop: 100, Label: 0},
	}
	assert.Error(t, CheckCoverage(gap, windows))

	short := []Interval{{PersonID: "p1", Start: 0, Stop: 99, Label: 0}}
	assert.Error(t, CheckCoverage(short, windows))
	assert.Error(t, CheckConservation(short, windows))

	missing := []Interval{}
	assert.Error(t, CheckCoverage(missing, windows))
}
