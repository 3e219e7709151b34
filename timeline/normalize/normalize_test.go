package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpcopeland/survtime/timeline"
)

var testWindows = map[string]timeline.Window{
	"p1": {PersonID: "p1", Entry: 0, Exit: 100},
	"p2": {PersonID: "p2", Entry: 50, Exit: 200},
}

func defaultOpts() Options {
	return Options{IterationLimit: 10000}
}

func TestDropsInvalidPeriodsWithWarning(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 20, Stop: 10, Label: 1},
		{PersonID: "p1", Start: 5, Stop: 8, Label: 1},
	}

	out := Normalize(raw, testWindows, defaultOpts(), report)

	require.Len(t, out, 1)
	assert.Equal(t, timeline.Day(5), out[0].Start)
	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, timeline.WarnInvalidInterval, warnings[0].Code)
}

func TestClipsToStudyWindow(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{
		{PersonID: "p2", Start: 10, Stop: 80, Label: 1},  // clipped to [50,80]
		{PersonID: "p2", Start: 190, Stop: 300, Label: 2}, // clipped to [190,200]
		{PersonID: "p2", Start: 10, Stop: 20, Label: 3},   // entirely before entry, dropped
	}

	out := Normalize(raw, testWindows, defaultOpts(), report)

	require.Len(t, out, 2)
	assert.Equal(t, timeline.Day(50), out[0].Start)
	assert.Equal(t, timeline.Day(80), out[0].Stop)
	assert.Equal(t, timeline.Day(200), out[1].Stop)
}

func TestDropsPersonsWithoutWindow(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{{PersonID: "ghost", Start: 0, Stop: 10, Label: 1}}

	out := Normalize(raw, testWindows, defaultOpts(), report)

	assert.Empty(t, out)
	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, timeline.WarnNoWindow, warnings[0].Code)
}

func TestLagShiftsBeforeClipping(t *testing.T) {
	report := timeline.NewReport()
	opts := defaultOpts()
	opts.Lag = 10
	raw := []timeline.Interval{{PersonID: "p1", Start: 85, Stop: 95, Label: 1}}

	out := Normalize(raw, testWindows, opts, report)

	require.Len(t, out, 1)
	assert.Equal(t, timeline.Day(95), out[0].Start)
	assert.Equal(t, timeline.Day(100), out[0].Stop) // shifted past exit, clipped
}

func TestMergeClosePeriodsChained(t *testing.T) {
	report := timeline.NewReport()
	opts := defaultOpts()
	opts.MergeWindow = 7
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 0, Stop: 10, Label: 1},
		{PersonID: "p1", Start: 15, Stop: 25, Label: 1}, // gap 5, merges
		{PersonID: "p1", Start: 30, Stop: 40, Label: 1}, // gap 5 after first merge
		{PersonID: "p1", Start: 60, Stop: 70, Label: 1}, // gap 20, stays
	}

	out := Normalize(raw, testWindows, opts, report)

	require.Len(t, out, 2)
	assert.Equal(t, timeline.Interval{PersonID: "p1", Start: 0, Stop: 40, Label: 1}, out[0])
	assert.Equal(t, timeline.Day(60), out[1].Start)
}

func TestMergeRespectsLabels(t *testing.T) {
	report := timeline.NewReport()
	opts := defaultOpts()
	opts.MergeWindow = 30
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 0, Stop: 10, Label: 1},
		{PersonID: "p1", Start: 15, Stop: 25, Label: 2},
	}

	out := Normalize(raw, testWindows, opts, report)

	// Different labels are never merged, whatever the window
	require.Len(t, out, 2)
}

func TestRemoveContainedSameLabel(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 0, Stop: 50, Label: 1},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
		{PersonID: "p1", Start: 12, Stop: 15, Label: 1},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 2}, // different label survives
	}

	out := Normalize(raw, testWindows, defaultOpts(), report)

	require.Len(t, out, 2)
	assert.Equal(t, float64(1), out[0].Label)
	assert.Equal(t, timeline.Day(50), out[0].Stop)
	assert.Equal(t, float64(2), out[1].Label)
}

func TestRemovesExactDuplicates(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 1},
	}

	out := Normalize(raw, testWindows, defaultOpts(), report)
	assert.Len(t, out, 1)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	report := timeline.NewReport()
	opts := defaultOpts()
	opts.MergeWindow = 7
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 0, Stop: 10, Label: 1},
		{PersonID: "p1", Start: 14, Stop: 30, Label: 1},
		{PersonID: "p1", Start: 40, Stop: 60, Label: 2},
		{PersonID: "p2", Start: 55, Stop: 120, Label: 1},
	}

	once := Normalize(raw, testWindows, opts, report)
	twice := Normalize(once, testWindows, opts, report)

	assert.Equal(t, once, twice)
}

func TestKeepOverlapsPreservesEveryRow(t *testing.T) {
	report := timeline.NewReport()
	raw := []timeline.Interval{
		{PersonID: "p1", Start: 10, Stop: 20, Label: 5},
		{PersonID: "p1", Start: 10, Stop: 20, Label: 5}, // repeated prescription
		{PersonID: "p1", Start: 12, Stop: 15, Label: 5}, // contained refill
	}

	opts := defaultOpts()
	opts.KeepOverlaps = true
	out := Normalize(raw, testWindows, opts, report)

	assert.Len(t, out, 3)
	assert.False(t, report.HasWarnings())
}
