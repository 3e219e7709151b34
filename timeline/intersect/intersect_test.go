package intersect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/timeline"
)

func dv(id string, start, stop timeline.Day, label float64) timeline.Derived {
	return timeline.Derived{
		Interval: timeline.Interval{PersonID: id, Start: start, Stop: stop, Label: label},
	}
}

func TestIntersectTwoTimelines(t *testing.T) {
	a := Input{Name: "exposure", Intervals: []timeline.Derived{
		dv("p1", 0, 49, 1),
		dv("p1", 50, 100, 2),
	}}
	b := Input{Name: "comed", Intervals: []timeline.Derived{
		dv("p1", 0, 30, 5),
		dv("p1", 31, 100, 6),
	}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, timeline.Day(0), out[0].Start)
	assert.Equal(t, timeline.Day(30), out[0].Stop)
	assert.Equal(t, []float64{1, 5}, out[0].SourceLabels)
	assert.Equal(t, timeline.Day(31), out[1].Start)
	assert.Equal(t, timeline.Day(49), out[1].Stop)
	assert.Equal(t, []float64{1, 6}, out[1].SourceLabels)
	assert.Equal(t, timeline.Day(50), out[2].Start)
	assert.Equal(t, timeline.Day(100), out[2].Stop)
	assert.Equal(t, []float64{2, 6}, out[2].SourceLabels)
}

func TestThreeWayReduction(t *testing.T) {
	a := Input{Name: "a", Intervals: []timeline.Derived{dv("p1", 0, 49, 1), dv("p1", 50, 100, 2)}}
	b := Input{Name: "b", Intervals: []timeline.Derived{dv("p1", 0, 30, 5), dv("p1", 31, 100, 6)}}
	c := Input{Name: "c", Intervals: []timeline.Derived{dv("p1", 0, 100, 9)}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b, c}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	require.Len(t, out, 3)
	for _, d := range out {
		require.Len(t, d.SourceLabels, 3)
		assert.Equal(t, float64(9), d.SourceLabels[2])
	}
}

func TestContinuousLabelReProportioned(t *testing.T) {
	a := Input{Name: "cumdose", Continuous: true, Intervals: []timeline.Derived{
		dv("p1", 0, 99, 100),
	}}
	b := Input{Name: "cats", Intervals: []timeline.Derived{
		dv("p1", 0, 49, 1),
		dv("p1", 50, 99, 2),
	}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.InDelta(t, 50, out[0].SourceLabels[0], 1e-9)
	assert.InDelta(t, 50, out[1].SourceLabels[0], 1e-9)
	assert.Equal(t, float64(1), out[0].SourceLabels[1])
}

func TestIncomingContinuousProportionedByOwnLength(t *testing.T) {
	a := Input{Name: "cats", Intervals: []timeline.Derived{
		dv("p1", 0, 49, 1),
		dv("p1", 50, 99, 2),
	}}
	b := Input{Name: "cumdose", Continuous: true, Intervals: []timeline.Derived{
		dv("p1", 0, 99, 100),
	}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.InDelta(t, 50, out[0].SourceLabels[1], 1e-9)
	assert.InDelta(t, 50, out[1].SourceLabels[1], 1e-9)
}

func TestContinuousReProportionsAgainstPreCombinationLength(t *testing.T) {
	a := Input{Name: "cumdose", Continuous: true, Intervals: []timeline.Derived{
		dv("p1", 0, 99, 100),
	}}
	b := Input{Name: "b", Intervals: []timeline.Derived{dv("p1", 0, 49, 1)}}
	c := Input{Name: "c", Intervals: []timeline.Derived{dv("p1", 0, 24, 2)}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b, c}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	// 100 over [0,99] becomes 50 over [0,49], then 25 over [0,24]
	require.Len(t, out, 1)
	assert.InDelta(t, 25, out[0].SourceLabels[0], 1e-9)
}

func TestCohortMismatchIsError(t *testing.T) {
	a := Input{Name: "a", Intervals: []timeline.Derived{dv("p1", 0, 10, 1), dv("p2", 0, 10, 1)}}
	b := Input{Name: "b", Intervals: []timeline.Derived{dv("p1", 0, 10, 2)}}

	report := timeline.NewReport()
	_, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.Error(t, err)
	assert.True(t, errors.IsCohortMismatch(err))
}

func TestAllowMismatchDropsWithWarning(t *testing.T) {
	a := Input{Name: "a", Intervals: []timeline.Derived{dv("p1", 0, 10, 1), dv("p2", 0, 10, 1)}}
	b := Input{Name: "b", Intervals: []timeline.Derived{dv("p1", 0, 10, 2)}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b}, Options{BatchSize: 100, AllowMismatch: true}, report)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].PersonID)
	require.True(t, report.HasWarnings())
	assert.Equal(t, timeline.WarnIDMismatch, report.Warnings()[0].Code)
}

func TestBatchSizeOneMatchesSinglePass(t *testing.T) {
	var as, bs []timeline.Derived
	for _, id := range []string{"p1", "p2", "p3"} {
		as = append(as, dv(id, 0, 49, 1))
		bs = append(bs, dv(id, 25, 74, 2))
	}
	a := Input{Name: "a", Intervals: as}
	b := Input{Name: "b", Intervals: bs}

	report := timeline.NewReport()
	batched, err := Intersect([]Input{a, b}, Options{BatchSize: 1}, report)
	require.NoError(t, err)
	single, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.NoError(t, err)

	assert.Equal(t, single, batched)
	require.Len(t, batched, 3)
	assert.Equal(t, timeline.Day(25), batched[0].Start)
	assert.Equal(t, timeline.Day(49), batched[0].Stop)
}

func TestBatchCursorsSurviveUnsortedInputAndGaps(t *testing.T) {
	// Five shared persons given out of order, plus one person private to
	// each input sitting between batch boundaries. Batches of two must
	// reproduce the single-pass result and leave the caller's slices
	// untouched.
	a := Input{Name: "a", Intervals: []timeline.Derived{
		dv("p5", 0, 9, 1),
		dv("p2", 0, 9, 1),
		dv("p4", 0, 9, 1),
		dv("p1", 0, 9, 1),
		dv("p3", 0, 9, 1),
		dv("p2b", 0, 9, 1),
	}}
	b := Input{Name: "b", Intervals: []timeline.Derived{
		dv("p3", 5, 14, 2),
		dv("p1", 5, 14, 2),
		dv("p3b", 5, 14, 2),
		dv("p5", 5, 14, 2),
		dv("p2", 5, 14, 2),
		dv("p4", 5, 14, 2),
	}}

	report := timeline.NewReport()
	batched, err := Intersect([]Input{a, b}, Options{BatchSize: 2, AllowMismatch: true}, report)
	require.NoError(t, err)
	single, err := Intersect([]Input{a, b}, Options{BatchSize: 100, AllowMismatch: true}, report)
	require.NoError(t, err)

	assert.Equal(t, single, batched)
	require.Len(t, batched, 5)
	for _, d := range batched {
		assert.Equal(t, timeline.Day(5), d.Start)
		assert.Equal(t, timeline.Day(9), d.Stop)
	}
	assert.Equal(t, "p5", a.Intervals[0].PersonID)
	assert.Equal(t, "p3", b.Intervals[0].PersonID)
}

func TestSingleInputRejected(t *testing.T) {
	a := Input{Name: "a", Intervals: []timeline.Derived{dv("p1", 0, 10, 1)}}
	report := timeline.NewReport()
	_, err := Intersect([]Input{a}, Options{}, report)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestDisjointIntervalsProduceNothing(t *testing.T) {
	a := Input{Name: "a", Intervals: []timeline.Derived{dv("p1", 0, 10, 1)}}
	b := Input{Name: "b", Intervals: []timeline.Derived{dv("p1", 20, 30, 2)}}

	report := timeline.NewReport()
	out, err := Intersect([]Input{a, b}, Options{BatchSize: 100}, report)
	require.NoError(t, err)
	assert.Empty(t, out)
}
