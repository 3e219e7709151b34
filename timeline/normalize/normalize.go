// Package normalize cleans raw exposure periods: lag shifting, invalid
// and duplicate removal, clipping to study windows, merging of close
// same-label periods, and removal of contained periods. Its output is
// per-person sorted and free of same-label redundancy, though different
// labels may still overlap; that is the resolver's job.
package normalize

import (
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Options controls normalization.
type Options struct {
	// MergeWindow is the maximum value of next.start - current.stop for
	// which two same-label periods are merged into one. 0 still merges
	// overlapping periods; abutting periods need a window of 1.
	MergeWindow int64

	// Lag shifts every raw period forward this many days before
	// clipping, modeling an induction period between dispensing and
	// biological effect
	Lag int64

	// IterationLimit caps the merge and containment fixed points
	IterationLimit int

	// KeepOverlaps skips duplicate removal, close-period merging, and
	// containment removal. Dose runs set this: every row contributes its
	// amount, so a repeated or contained prescription is a real dose,
	// not redundancy.
	KeepOverlaps bool
}

// Normalize cleans the raw periods against the study windows. Invalid
// periods are dropped with a warning, never an error. The input slice is
// not modified.
func Normalize(raw []timeline.Interval, windows map[string]timeline.Window, opts Options, report *timeline.Report) []timeline.Interval {
	cleaned := make([]timeline.Interval, 0, len(raw))

	dropped := 0
	for _, iv := range raw {
		if opts.Lag > 0 {
			iv.Start += opts.Lag
			iv.Stop += opts.Lag
		}

		if !iv.Valid() {
			report.Warnf(timeline.WarnInvalidInterval, iv.PersonID,
				"dropped period with start after stop")
			dropped++
			continue
		}

		w, ok := windows[iv.PersonID]
		if !ok {
			report.Warnf(timeline.WarnNoWindow, iv.PersonID,
				"dropped period for person with no study window")
			dropped++
			continue
		}

		// Clip to the study window; periods entirely outside vanish
		if iv.Start < w.Entry {
			iv.Start = w.Entry
		}
		if iv.Stop > w.Exit {
			iv.Stop = w.Exit
		}
		if !iv.Valid() {
			dropped++
			continue
		}

		cleaned = append(cleaned, iv)
	}

	if !opts.KeepOverlaps {
		cleaned = dedupe(cleaned)
	}

	ids, groups := timeline.ByPerson(cleaned)
	out := make([]timeline.Interval, 0, len(cleaned))
	for _, id := range ids {
		group := groups[id]
		if !opts.KeepOverlaps {
			group = mergeClose(id, group, opts, report)
			group = removeContained(id, group, opts, report)
		}
		out = append(out, group...)
	}

	timeline.SortIntervals(out)
	logger.Debugw("normalized raw periods",
		"intervals", len(out),
		"persons", len(ids),
		"dropped", dropped,
	)
	return out
}

// dedupe removes exact duplicate rows (same person, bounds, label).
func dedupe(ivs []timeline.Interval) []timeline.Interval {
	seen := make(map[timeline.Interval]bool, len(ivs))
	out := ivs[:0:0]
	for _, iv := range ivs {
		if seen[iv] {
			continue
		}
		seen[iv] = true
		out = append(out, iv)
	}
	return out
}

// mergeClose repeatedly merges same-label periods whose gap
// (next.start - current.stop) is within the merge window. Chained merges
// (A absorbs B, then AB absorbs C) require iterating to a fixed point.
func mergeClose(personID string, group []timeline.Interval, opts Options, report *timeline.Report) []timeline.Interval {
	timeline.FixedPoint("merge-close-periods", personID, opts.IterationLimit, report, func() bool {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].Label != group[j].Label {
					continue
				}
				a, b := group[i], group[j]
				if b.Start < a.Start {
					a, b = b, a
				}
				if b.Start-a.Stop > opts.MergeWindow {
					continue
				}
				// Extend the earlier period over the later one
				if b.Stop > a.Stop {
					a.Stop = b.Stop
				}
				group[i] = a
				group = append(group[:j], group[j+1:]...)
				return true
			}
		}
		return false
	})
	return sorted(group)
}

// removeContained drops any same-label period fully inside another
// period of the same label. Removing one period can expose another's
// containment, so this also iterates to a fixed point.
func removeContained(personID string, group []timeline.Interval, opts Options, report *timeline.Report) []timeline.Interval {
	timeline.FixedPoint("remove-contained-periods", personID, opts.IterationLimit, report, func() bool {
		for i := 0; i < len(group); i++ {
			for j := 0; j < len(group); j++ {
				if i == j || group[i].Label != group[j].Label {
					continue
				}
				if group[i].Contains(group[j]) {
					group = append(group[:j], group[j+1:]...)
					return true
				}
			}
		}
		return false
	})
	return sorted(group)
}

func sorted(group []timeline.Interval) []timeline.Interval {
	timeline.SortIntervals(group)
	return group
}
