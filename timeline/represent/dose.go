package represent

import (
	"sort"

	"github.com/tpcopeland/survtime/timeline"
	"github.com/tpcopeland/survtime/timeline/cover"
)

// DoseOptions controls the dose transformation.
type DoseOptions struct {
	// Categorical buckets the cumulative dose against DoseCuts instead
	// of carrying the continuous running total as the label
	Categorical bool

	// DoseCuts are the ascending cumulative-dose band boundaries
	DoseCuts []float64
}

// TransformDose converts amount-labeled intervals into a tiled timeline
// of cumulative dose. Each raw interval's amount is spread evenly over
// its days as a rate; overlapping intervals resolve by summing rates,
// never by one source displacing another, so the total amount is
// conserved. The tiled rate timeline is then scanned into a running
// cumulative total, continuous or bucketed.
//
// Dose runs take normalized but unresolved intervals: the category
// overlap policies do not apply to amounts.
func TransformDose(ivs []timeline.Interval, windows map[string]timeline.Window, opts DoseOptions, report *timeline.Report) ([]timeline.Derived, error) {
	ids, groups := timeline.ByPerson(ivs)

	rated := make([]timeline.Interval, 0, len(ivs))
	for _, id := range ids {
		rated = append(rated, sumRates(groups[id])...)
	}

	// Gaps and window margins carry rate zero. Grace and carry-forward
	// are category-timeline concepts and do not apply to rates.
	filled, err := cover.Complete(rated, windows, cover.Options{Reference: 0}, report)
	if err != nil {
		return nil, err
	}

	var out []timeline.Derived
	filledIDs, filledGroups := timeline.ByPerson(filled)
	for _, id := range filledIDs {
		out = append(out, mergeIdentical(accumulateDose(filledGroups[id], opts))...)
	}
	timeline.SortDerived(out)
	return out, nil
}

// sumRates turns one person's amount intervals into non-overlapping
// rate intervals: split every interval at every other interval's
// boundaries, then sum the per-day rates of the sources covering each
// region.
func sumRates(group []timeline.Interval) []timeline.Interval {
	if len(group) == 0 {
		return nil
	}

	boundarySet := make(map[timeline.Day]bool, 2*len(group))
	for _, iv := range group {
		boundarySet[iv.Start] = true
		boundarySet[iv.Stop+1] = true
	}
	boundaries := make([]timeline.Day, 0, len(boundarySet))
	for d := range boundarySet {
		boundaries = append(boundaries, d)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	var out []timeline.Interval
	for i := 0; i+1 < len(boundaries); i++ {
		region := timeline.Interval{
			PersonID: group[0].PersonID,
			Start:    boundaries[i],
			Stop:     boundaries[i+1] - 1,
		}
		rate := 0.0
		covered := false
		for _, iv := range group {
			if iv.Start <= region.Start && region.Stop <= iv.Stop {
				rate += iv.Label / float64(iv.Length())
				covered = true
			}
		}
		if !covered {
			continue
		}
		region.Label = rate
		out = append(out, region)
	}
	return out
}

// accumulateDose scans one person's tiled rate timeline into cumulative
// dose. Categorical runs split an interval wherever the running total
// crosses a dose cutpoint, so every output interval sits in one band.
func accumulateDose(group []timeline.Interval, opts DoseOptions) []timeline.Derived {
	var out []timeline.Derived
	cum := 0.0
	for _, iv := range group {
		rate := iv.Label
		for _, seg := range splitAtDoseCuts(iv, cum, opts) {
			cum += rate * float64(seg.Length())
			d := timeline.Derived{Interval: seg, Value: cum}
			if opts.Categorical {
				d.Label = bucket(cum, opts.DoseCuts)
			} else {
				d.Label = cum
			}
			out = append(out, d)
		}
	}
	return out
}

// splitAtDoseCuts cuts a rate interval at the first day of each dose
// band the running total enters inside it. Crossing days come from the
// rate in exact day counts.
func splitAtDoseCuts(iv timeline.Interval, cum float64, opts DoseOptions) []timeline.Interval {
	if !opts.Categorical || iv.Label == 0 {
		return []timeline.Interval{iv}
	}

	rate := iv.Label
	cutSet := make(map[timeline.Day]bool)
	// zero is the implicit boundary out of the never band
	for _, cut := range append([]float64{0}, opts.DoseCuts...) {
		if cum > cut+timeline.Epsilon {
			continue
		}
		// first day whose end-of-day total exceeds the cut
		offset := timeline.Day((cut + timeline.Epsilon - cum) / rate)
		d := iv.Start + offset
		if iv.Start < d && d <= iv.Stop {
			cutSet[d] = true
		}
	}
	return applySplits([]timeline.Interval{iv}, cutSet)
}
