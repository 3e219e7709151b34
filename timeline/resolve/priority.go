package resolve

import (
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/timeline"
)

// priorityPerson applies the Priority policy to one person's intervals.
//
// The caller-supplied total order over labels decides every conflict:
// wherever a lower-priority interval is covered in time by a
// higher-priority one, the lower is truncated around it or removed
// entirely. Ties cannot occur because the order is total over labels.
func priorityPerson(personID string, group []timeline.Interval, opts Options, report *timeline.Report) ([]timeline.Interval, error) {
	rank := make(map[float64]int, len(opts.PriorityOrder))
	for i, label := range opts.PriorityOrder {
		rank[float64(label)] = i
	}
	for _, iv := range group {
		if _, ok := rank[iv.Label]; !ok {
			return nil, errors.NewConfigurationError(
				"priority_order does not rank label %v (person %s)", iv.Label, personID)
		}
	}

	timeline.FixedPoint("priority-resolution", personID, opts.IterationLimit, report, func() bool {
		timeline.SortIntervals(group)

		for i := 0; i < len(group)-1; i++ {
			a := group[i]
			b := group[i+1]
			if b.Start > a.Stop || a.Label == b.Label {
				continue
			}

			// The lower-priority interval yields over the overlap
			lo, hi := a, b
			loIdx := i
			if rank[a.Label] < rank[b.Label] { // smaller rank = higher priority
				lo, hi = b, a
				loIdx = i + 1
			}

			var pieces []timeline.Interval
			if lo.Start < hi.Start {
				pieces = append(pieces, timeline.Interval{
					PersonID: lo.PersonID, Start: lo.Start, Stop: hi.Start - 1, Label: lo.Label,
				})
			}
			if lo.Stop > hi.Stop {
				pieces = append(pieces, timeline.Interval{
					PersonID: lo.PersonID, Start: hi.Stop + 1, Stop: lo.Stop, Label: lo.Label,
				})
			}

			group = append(group[:loIdx], group[loIdx+1:]...)
			group = append(group, pieces...)
			group = mergeAdjacentSameLabel(group, 1)
			return true
		}
		return false
	})

	timeline.SortIntervals(group)
	return group, nil
}
