package resolve

import (
	"sort"

	"github.com/tpcopeland/survtime/timeline"
)

// combineLabelBase is the multiplier of the pairing function: two source
// labels a <= b combine into a*100 + b. Deterministic and reversible as
// long as single labels stay below 100.
const combineLabelBase = 100

// pairLabels is the deterministic pairing function for overlap regions.
// Callers feed it labels in ascending order, so a two-way overlap of
// labels 1 and 2 reads back as 102, and a three-way overlap pairs
// progressively: pair(pair(1,2),3) = 10203.
func pairLabels(a, b float64) float64 {
	return a*combineLabelBase + b
}

// combinePerson applies the Combine policy to one person's intervals.
//
// Each maximal region of constant overlap membership gets a single
// interval: regions covered by one source keep that label, regions
// covered by exactly two get the composite pairLabels value. Regions
// with three or more sources reduce left-to-right in ascending label
// order, pairing progressively, and the person gets a multiway-overlap
// warning since composite-of-composite labels are hard to decode.
func combinePerson(personID string, group []timeline.Interval, report *timeline.Report) []timeline.Interval {
	if len(group) < 2 {
		return group
	}

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
	warned := false
	for i := 0; i < len(boundaries)-1; i++ {
		start, next := boundaries[i], boundaries[i+1]

		var active []float64
		for _, iv := range group {
			if iv.Start <= start && next-1 <= iv.Stop {
				active = append(active, iv.Label)
			}
		}
		if len(active) == 0 {
			continue
		}
		sort.Float64s(active)

		label := active[0]
		for _, l := range active[1:] {
			label = pairLabels(label, l)
		}
		if len(active) > 2 && !warned {
			report.Warnf(timeline.WarnMultiwayOverlap, personID,
				"%d periods overlap at day %d; composite labels pair left-to-right", len(active), start)
			warned = true
		}

		out = append(out, timeline.Interval{
			PersonID: personID, Start: start, Stop: next - 1, Label: label,
		})
	}

	// Same-composite regions split by artifact boundaries re-merge
	out = mergeAdjacentSameLabel(out, 1)
	timeline.SortIntervals(out)
	return out
}
