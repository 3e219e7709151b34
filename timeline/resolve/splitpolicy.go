package resolve

import (
	"sort"

	"github.com/tpcopeland/survtime/timeline"
)

// splitPerson applies the Split policy to one person's intervals.
//
// Every distinct boundary instant across the person's intervals becomes
// a cut: each interval is divided at every boundary falling strictly
// inside it, producing one sub-interval per maximal region of constant
// overlap membership. Sub-intervals keep their source label, so
// overlapping regions come out as parallel rows (long format).
func splitPerson(group []timeline.Interval) []timeline.Interval {
	if len(group) < 2 {
		return group
	}

	// Boundary instants: every start opens a region, every stop+1 closes
	// one. A boundary from a non-overlapping interval falls outside all
	// others, so collecting them all is equivalent to collecting only
	// overlapping ones.
	boundarySet := make(map[timeline.Day]bool, 2*len(group))
	for _, iv := range group {
		boundarySet[iv.Start] = true
		boundarySet[iv.Stop+1] = true
	}
	boundaries := make([]timeline.Day, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	var out []timeline.Interval
	for _, iv := range group {
		segStart := iv.Start
		for _, b := range boundaries {
			if b <= iv.Start || b > iv.Stop {
				continue
			}
			out = append(out, timeline.Interval{
				PersonID: iv.PersonID, Start: segStart, Stop: b - 1, Label: iv.Label,
			})
			segStart = b
		}
		out = append(out, timeline.Interval{
			PersonID: iv.PersonID, Start: segStart, Stop: iv.Stop, Label: iv.Label,
		})
	}

	timeline.SortIntervals(out)
	return out
}
