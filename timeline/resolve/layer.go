package resolve

import (
	"github.com/tpcopeland/survtime/timeline"
)

// layerPerson applies the Layer policy to one person's sorted intervals.
//
// While any interval A is followed by an overlapping different-label
// interval B, A yields: it is cut back to [A.start, B.start-1], and if A
// extends past B it resumes as [B.stop+1, A.stop] with its own label.
// B is left untouched.
//
// Overlaps of three or more intervals reduce left-to-right: each pass
// repairs the earliest overlapping pair and re-merges same-label
// segments before the next pass, so the outcome is deterministic
// whatever the overlap pattern.
func layerPerson(personID string, group []timeline.Interval, opts Options, report *timeline.Report) []timeline.Interval {
	timeline.FixedPoint("layer-resolution", personID, opts.IterationLimit, report, func() bool {
		timeline.SortIntervals(group)

		for i := 0; i < len(group)-1; i++ {
			a := group[i]
			b := group[i+1]
			if b.Start > a.Stop || a.Label == b.Label {
				continue
			}

			// A yields to B over their overlap
			var pieces []timeline.Interval
			if b.Start > a.Start {
				pieces = append(pieces, timeline.Interval{
					PersonID: a.PersonID, Start: a.Start, Stop: b.Start - 1, Label: a.Label,
				})
			}
			if a.Stop > b.Stop {
				// A resumes after B ends
				pieces = append(pieces, timeline.Interval{
					PersonID: a.PersonID, Start: b.Stop + 1, Stop: a.Stop, Label: a.Label,
				})
			}

			group = append(group[:i], group[i+1:]...)
			group = append(group, pieces...)
			group = mergeAdjacentSameLabel(group, opts.MergeWindow)
			return true
		}
		return false
	})

	timeline.SortIntervals(group)
	return group
}
