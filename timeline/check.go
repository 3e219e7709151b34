package timeline

import (
	"github.com/tpcopeland/survtime/errors"
)

// CheckCoverage verifies the coverage invariant: for every person the
// intervals, sorted by start, begin at entry, end at exit, and are
// contiguous with start[i] = stop[i-1]+1. Returns nil when the timeline
// tiles every window exactly.
//
// The coverage completer enforces this before returning; tests use it to
// assert the invariant survives later stages.
func CheckCoverage(ivs []Interval, windows map[string]Window) error {
	ids, groups := ByPerson(ivs)

	for _, id := range ids {
		w, ok := windows[id]
		if !ok {
			return errors.NewDataQualityError("intervals for %s have no study window", id)
		}
		group := groups[id]

		if group[0].Start != w.Entry {
			return errors.AssertionFailedf(
				"coverage violation for %s: first interval starts %d, window entry %d",
				id, group[0].Start, w.Entry)
		}
		if group[len(group)-1].Stop != w.Exit {
			return errors.AssertionFailedf(
				"coverage violation for %s: last interval stops %d, window exit %d",
				id, group[len(group)-1].Stop, w.Exit)
		}
		for i := 1; i < len(group); i++ {
			if group[i].Start != group[i-1].Stop+1 {
				return errors.AssertionFailedf(
					"coverage violation for %s: interval %d starts %d, previous stops %d",
					id, i, group[i].Start, group[i-1].Stop)
			}
		}
	}

	// Every window must be covered, not only every interval anchored
	for id := range windows {
		if _, ok := groups[id]; !ok {
			return errors.AssertionFailedf("coverage violation: no intervals for %s", id)
		}
	}
	return nil
}

// CheckConservation sums interval lengths per person and verifies
// conservation against the study windows: relabeling must never drop
// or duplicate time. Returns the first person violating it, or nil.
func CheckConservation(ivs []Interval, windows map[string]Window) error {
	totals := make(map[string]int64)
	for _, iv := range ivs {
		totals[iv.PersonID] += iv.Length()
	}
	for id, total := range totals {
		w, ok := windows[id]
		if !ok {
			continue
		}
		if total != w.Length() {
			return errors.AssertionFailedf(
				"conservation violation for %s: %d days covered, window has %d", id, total, w.Length())
		}
	}
	return nil
}
