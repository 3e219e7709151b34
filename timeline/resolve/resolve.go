// Package resolve eliminates overlaps between periods of different
// categories under one of four explicit policies:
//
//   - Layer: later-starting periods interrupt earlier ones, which resume
//     after the interruption ends
//   - Priority: a user-supplied total order over labels decides which
//     period survives wherever two compete
//   - Split: periods are cut at every boundary so each maximal region of
//     constant overlap membership becomes its own sub-interval, one per
//     source label (long format, overlaps retained)
//   - Combine: overlap regions between a pair of periods receive a
//     composite label from a deterministic pairing function
//
// Same-label overlaps never survive normalization, so every conflict
// seen here is between different labels.
package resolve

import (
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Policy selects the overlap resolution semantics.
type Policy string

const (
	PolicyLayer    Policy = "layer"
	PolicyPriority Policy = "priority"
	PolicySplit    Policy = "split"
	PolicyCombine  Policy = "combine"
)

// Options controls overlap resolution.
type Options struct {
	Policy Policy

	// PriorityOrder is the total order over labels for PolicyPriority,
	// highest priority first. Every label in the data must appear.
	PriorityOrder []int64

	// MergeWindow re-merges same-label segments produced by layering,
	// using the same gap rule as normalization
	MergeWindow int64

	// IterationLimit caps the per-person fixed-point loops
	IterationLimit int
}

// Resolve applies the configured policy person by person. The input must
// be normalized (per-person sorted, no same-label redundancy); the
// output has no unintended overlaps per the policy's semantics.
func Resolve(ivs []timeline.Interval, opts Options, report *timeline.Report) ([]timeline.Interval, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyLayer
	}

	ids, groups := timeline.ByPerson(ivs)
	out := make([]timeline.Interval, 0, len(ivs))

	for _, id := range ids {
		group := groups[id]

		var resolved []timeline.Interval
		var err error
		switch opts.Policy {
		case PolicyLayer:
			resolved = layerPerson(id, group, opts, report)
		case PolicyPriority:
			resolved, err = priorityPerson(id, group, opts, report)
		case PolicySplit:
			resolved = splitPerson(group)
		case PolicyCombine:
			resolved = combinePerson(id, group, report)
		default:
			err = errors.NewConfigurationError("unknown overlap policy %q", opts.Policy)
		}
		if err != nil {
			return nil, err
		}

		// Split intentionally retains overlapping sub-intervals; for the
		// other policies a surviving overlap means the fixed point gave
		// up, which the person must be told about.
		if opts.Policy != PolicySplit {
			if overlapRemains(resolved) {
				report.Warnf(timeline.WarnUnresolvedOverlap, id,
					"overlap survived %s resolution", opts.Policy)
			}
		}

		out = append(out, resolved...)
	}

	timeline.SortIntervals(out)
	logger.Debugw("resolved overlaps",
		"policy", string(opts.Policy),
		"intervals", len(out),
		"persons", len(ids),
	)
	return out, nil
}

// overlapRemains reports whether any two intervals in a per-person
// start-sorted group share a day.
func overlapRemains(group []timeline.Interval) bool {
	for i := 1; i < len(group); i++ {
		if group[i].Start <= group[i-1].Stop {
			return true
		}
	}
	return false
}

// mergeAdjacentSameLabel re-merges same-label segments whose gap is
// within window days, or which abut exactly. Layer splitting manufactures
// such segments and the policy contract says they re-merge.
func mergeAdjacentSameLabel(group []timeline.Interval, window int64) []timeline.Interval {
	if len(group) < 2 {
		return group
	}
	if window < 1 {
		window = 1 // abutting segments always re-merge
	}

	timeline.SortIntervals(group)
	out := group[:0:0]
	cur := group[0]
	for _, next := range group[1:] {
		if next.Label == cur.Label && next.Start-cur.Stop <= window {
			if next.Stop > cur.Stop {
				cur.Stop = next.Stop
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)
	return out
}
