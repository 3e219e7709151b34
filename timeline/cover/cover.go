// Package cover completes a resolved timeline so every person's
// intervals exactly tile their study window: short same-label gaps are
// bridged by grace, longer gaps are filled with carry-forward days and
// reference time, and baseline and trailing reference intervals are
// synthesized. The coverage invariant is enforced on exit.
package cover

import (
	"sort"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Options controls coverage completion.
type Options struct {
	// Reference is the sentinel label meaning "no exposure"
	Reference float64

	// Grace is the maximum gap in days between two same-label intervals
	// that is bridged rather than treated as unexposed
	Grace int64

	// GraceByLabel overrides Grace per label
	GraceByLabel map[int64]int64

	// CarryForward is the number of days after an exposure ends during
	// which its label is still assigned before reverting to reference
	CarryForward int64

	// AllowOverlap skips the tiling invariant for long-format input
	// (the split policy intentionally retains parallel rows); gaps are
	// then computed over the union of each person's coverage
	AllowOverlap bool
}

func (o Options) graceFor(label float64) int64 {
	if g, ok := o.GraceByLabel[int64(label)]; ok {
		return g
	}
	return o.Grace
}

// Complete tiles every study window. Persons with no intervals at all
// get a single reference interval spanning their full window.
func Complete(ivs []timeline.Interval, windows map[string]timeline.Window, opts Options, report *timeline.Report) ([]timeline.Interval, error) {
	if len(windows) == 0 {
		return nil, errors.ErrEmptyInput
	}

	_, groups := timeline.ByPerson(ivs)

	// Sorted window iteration keeps output deterministic even for
	// persons with no exposure rows
	out := make([]timeline.Interval, 0, len(ivs)+2*len(windows))
	for _, id := range sortedWindowIDs(windows) {
		w := windows[id]
		group := groups[id]

		if opts.AllowOverlap {
			out = append(out, completeUnion(group, w, opts)...)
			continue
		}

		group = bridgeGaps(group, opts)
		group = fillGaps(group, w, opts)
		out = append(out, group...)
	}

	timeline.SortIntervals(out)

	if !opts.AllowOverlap {
		if err := timeline.CheckCoverage(out, windows); err != nil {
			return nil, err
		}
	}

	logger.Debugw("completed coverage",
		"intervals", len(out),
		"persons", len(windows),
	)
	return out, nil
}

func sortedWindowIDs(windows map[string]timeline.Window) []string {
	ids := make([]string, 0, len(windows))
	for id := range windows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// bridgeGaps extends an interval's end over a following same-label gap
// of at most grace days. Bridging never creates a new same-label gap, so
// a single left-to-right pass suffices.
func bridgeGaps(group []timeline.Interval, opts Options) []timeline.Interval {
	for i := 0; i < len(group)-1; i++ {
		cur, next := group[i], group[i+1]
		if cur.Label != next.Label {
			continue
		}
		gap := next.Start - cur.Stop - 1
		if gap > 0 && gap <= opts.graceFor(cur.Label) {
			group[i].Stop = next.Start - 1
		}
	}
	return group
}

// fillGaps synthesizes baseline, interior, and trailing coverage so the
// group tiles [entry, exit]. Interior and trailing gaps first inherit
// the preceding label for the carry-forward days, then revert to
// reference.
func fillGaps(group []timeline.Interval, w timeline.Window, opts Options) []timeline.Interval {
	out := make([]timeline.Interval, 0, 2*len(group)+2)

	if len(group) == 0 {
		return []timeline.Interval{{
			PersonID: w.PersonID, Start: w.Entry, Stop: w.Exit, Label: opts.Reference,
		}}
	}

	// Baseline: reference from entry to the first exposure
	if group[0].Start > w.Entry {
		out = append(out, timeline.Interval{
			PersonID: w.PersonID, Start: w.Entry, Stop: group[0].Start - 1, Label: opts.Reference,
		})
	}

	for i, cur := range group {
		out = append(out, cur)

		gapStop := w.Exit
		if i+1 < len(group) {
			gapStop = group[i+1].Start - 1
		}
		out = append(out, fillOneGap(w.PersonID, cur, gapStop, opts)...)
	}

	return mergeAdjacent(out)
}

// fillOneGap covers (prev.Stop, gapStop] with carry-forward then
// reference time. Empty when the next interval abuts prev.
func fillOneGap(personID string, prev timeline.Interval, gapStop timeline.Day, opts Options) []timeline.Interval {
	gapStart := prev.Stop + 1
	if gapStart > gapStop {
		return nil
	}

	var out []timeline.Interval
	if opts.CarryForward > 0 && prev.Label != opts.Reference {
		cfStop := gapStart + opts.CarryForward - 1
		if cfStop > gapStop {
			cfStop = gapStop
		}
		out = append(out, timeline.Interval{
			PersonID: personID, Start: gapStart, Stop: cfStop, Label: prev.Label,
		})
		gapStart = cfStop + 1
	}
	if gapStart <= gapStop {
		out = append(out, timeline.Interval{
			PersonID: personID, Start: gapStart, Stop: gapStop, Label: opts.Reference,
		})
	}
	return out
}

// completeUnion fills only the gaps in the union of a long-format
// group's coverage, leaving parallel rows in place.
func completeUnion(group []timeline.Interval, w timeline.Window, opts Options) []timeline.Interval {
	if len(group) == 0 {
		return []timeline.Interval{{
			PersonID: w.PersonID, Start: w.Entry, Stop: w.Exit, Label: opts.Reference,
		}}
	}

	// Union of covered days, as sorted disjoint spans
	var spans []timeline.Interval
	for _, iv := range group {
		spans = append(spans, iv)
	}
	timeline.SortIntervals(spans)
	union := spans[:1:1]
	for _, iv := range spans[1:] {
		last := &union[len(union)-1]
		if iv.Start <= last.Stop+1 {
			if iv.Stop > last.Stop {
				last.Stop = iv.Stop
			}
			continue
		}
		union = append(union, iv)
	}

	out := append([]timeline.Interval(nil), group...)
	if union[0].Start > w.Entry {
		out = append(out, timeline.Interval{
			PersonID: w.PersonID, Start: w.Entry, Stop: union[0].Start - 1, Label: opts.Reference,
		})
	}
	for i := 0; i < len(union)-1; i++ {
		out = append(out, timeline.Interval{
			PersonID: w.PersonID, Start: union[i].Stop + 1, Stop: union[i+1].Start - 1, Label: opts.Reference,
		})
	}
	if union[len(union)-1].Stop < w.Exit {
		out = append(out, timeline.Interval{
			PersonID: w.PersonID, Start: union[len(union)-1].Stop + 1, Stop: w.Exit, Label: opts.Reference,
		})
	}

	timeline.SortIntervals(out)
	return out
}

// mergeAdjacent merges abutting same-label intervals. Carry-forward and
// grace both manufacture them.
func mergeAdjacent(group []timeline.Interval) []timeline.Interval {
	if len(group) < 2 {
		return group
	}
	out := group[:0:0]
	cur := group[0]
	for _, next := range group[1:] {
		if next.Label == cur.Label && next.Start == cur.Stop+1 {
			cur.Stop = next.Stop
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}
