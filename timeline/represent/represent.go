// Package represent recomputes each interval's label under a chosen
// exposure representation: ever-treated, current/former, duration
// bands, continuous cumulative exposure, recency, and cumulative dose.
//
// Each representation is a per-person state machine scanning intervals
// in time order. Whenever the derived category would change strictly
// inside an interval (a duration threshold crossed mid-interval, a
// washout elapsing), the interval is split at the exact crossing day so
// every output interval carries one constant label. Crossing days are
// computed in exact integer day counts; the epsilon tolerance applies
// only to category-boundary comparisons, never to date arithmetic.
package represent

import (
	"math"
	"sort"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Representation selects the relabeling semantics.
type Representation string

const (
	RepNone             Representation = "none"
	RepEver             Representation = "ever"
	RepCurrentFormer    Representation = "current_former"
	RepDurationCategory Representation = "duration_category"
	RepCumulative       Representation = "cumulative"
	RepRecency          Representation = "recency"
)

// Options controls the transformation.
type Options struct {
	Representation Representation

	// Reference is the sentinel label meaning "no exposure"
	Reference float64

	// Cutpoints are the ascending band boundaries for duration and
	// recency representations. Duration cutpoints are in units (see
	// UnitDivisor); recency cutpoints are in days.
	Cutpoints []float64

	// UnitDivisor converts cumulative days into reporting units
	// (1 = days, 7 = weeks, ...)
	UnitDivisor float64

	// Washout is the number of unexposed days after which a person
	// reverts to never-exposed. 0 means the representation default:
	// recency reverts after 10x its largest cutpoint, current/former
	// never reverts.
	Washout int64

	// ByCategory maintains one independent state per category in
	// Categories, producing a parallel accumulator per interval
	ByCategory bool

	// Categories is the category domain for ByCategory, captured from
	// the un-resolved raw data so categories eliminated by overlap
	// resolution still appear (as all-reference).
	Categories []int64
}

// scanner is one representation's per-person state machine. The two
// methods advance the same state, so a scanner is consumed by exactly
// one pass; phases needing a fresh state construct a new scanner.
type scanner interface {
	// splits consumes one interval and returns the days strictly inside
	// it where the derived category changes (each day starts a new
	// segment)
	splits(iv timeline.Interval) []timeline.Day

	// segment consumes one (already split) interval and returns its
	// constant label and cumulative value
	segment(iv timeline.Interval) (label, value float64)
}

// Transform relabels a tiled timeline under the chosen representation.
// Interval boundaries are preserved except for category-crossing splits
// and the re-merge of adjacent intervals with identical output.
func Transform(ivs []timeline.Interval, opts Options, report *timeline.Report) ([]timeline.Derived, error) {
	if opts.UnitDivisor <= 0 {
		opts.UnitDivisor = 1
	}

	newScanner, err := scannerFactory(opts)
	if err != nil {
		return nil, err
	}

	ids, groups := timeline.ByPerson(ivs)
	var out []timeline.Derived

	for _, id := range ids {
		group := groups[id]

		// Phase one: collect every category-crossing day, pooled and
		// per-category, so the refined tiling satisfies all of them
		cutDays := make(map[timeline.Day]bool)
		collectSplits(newScanner(pooledExposure(opts)), group, cutDays)
		if opts.ByCategory {
			for _, cat := range opts.Categories {
				collectSplits(newScanner(categoryExposure(cat)), group, cutDays)
			}
		}
		refined := applySplits(group, cutDays)

		// Phase two: label the refined tiling with fresh state
		pooled := newScanner(pooledExposure(opts))
		var perCategory map[int64]scanner
		if opts.ByCategory {
			perCategory = make(map[int64]scanner, len(opts.Categories))
			for _, cat := range opts.Categories {
				perCategory[cat] = newScanner(categoryExposure(cat))
			}
		}

		persons := make([]timeline.Derived, 0, len(refined))
		for _, seg := range refined {
			label, value := pooled.segment(seg)
			d := timeline.Derived{Interval: seg, Value: value}
			d.Label = label
			if opts.ByCategory {
				d.ByCategory = make(map[int64]float64, len(opts.Categories))
				for _, cat := range opts.Categories {
					catLabel, _ := perCategory[cat].segment(seg)
					d.ByCategory[cat] = catLabel
				}
			}
			persons = append(persons, d)
		}

		out = append(out, mergeIdentical(persons)...)
	}

	timeline.SortDerived(out)
	logger.Debugw("transformed representation",
		"representation", string(opts.Representation),
		"intervals", len(out),
		"persons", len(ids),
	)
	return out, nil
}

// scannerFactory maps the representation to its scanner constructor.
func scannerFactory(opts Options) (func(exposed func(float64) bool) scanner, error) {
	switch opts.Representation {
	case RepNone, "":
		return func(func(float64) bool) scanner { return identityScanner{} }, nil
	case RepEver:
		return func(exposed func(float64) bool) scanner {
			return &everScanner{exposed: exposed}
		}, nil
	case RepCurrentFormer:
		return func(exposed func(float64) bool) scanner {
			return &currentFormerScanner{exposed: exposed, washout: opts.Washout}
		}, nil
	case RepDurationCategory:
		return func(exposed func(float64) bool) scanner {
			return &durationScanner{exposed: exposed, cuts: opts.Cutpoints, divisor: opts.UnitDivisor}
		}, nil
	case RepCumulative:
		return func(exposed func(float64) bool) scanner {
			return &cumulativeScanner{exposed: exposed, divisor: opts.UnitDivisor}
		}, nil
	case RepRecency:
		return func(exposed func(float64) bool) scanner {
			return &recencyScanner{exposed: exposed, cuts: opts.Cutpoints, horizon: recencyHorizon(opts)}
		}, nil
	default:
		return nil, errors.NewConfigurationError("unknown representation %q", opts.Representation)
	}
}

// recencyHorizon is the day count after which recency reverts to never:
// the washout when configured, else 10x the largest cutpoint.
func recencyHorizon(opts Options) int64 {
	if opts.Washout > 0 {
		return opts.Washout
	}
	if len(opts.Cutpoints) == 0 {
		return math.MaxInt64
	}
	return int64(10 * opts.Cutpoints[len(opts.Cutpoints)-1])
}

func pooledExposure(opts Options) func(float64) bool {
	ref := opts.Reference
	return func(label float64) bool { return label != ref }
}

func categoryExposure(cat int64) func(float64) bool {
	want := float64(cat)
	return func(label float64) bool { return label == want }
}

func collectSplits(s scanner, group []timeline.Interval, cutDays map[timeline.Day]bool) {
	for _, iv := range group {
		for _, d := range s.splits(iv) {
			cutDays[d] = true
		}
	}
}

// applySplits cuts each interval at every collected day strictly inside
// it. Days outside all intervals are ignored.
func applySplits(group []timeline.Interval, cutDays map[timeline.Day]bool) []timeline.Interval {
	if len(cutDays) == 0 {
		return group
	}

	days := make([]timeline.Day, 0, len(cutDays))
	for d := range cutDays {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	out := make([]timeline.Interval, 0, len(group)+len(days))
	for _, iv := range group {
		segStart := iv.Start
		for _, d := range days {
			if d <= iv.Start || d > iv.Stop {
				continue
			}
			out = append(out, timeline.Interval{
				PersonID: iv.PersonID, Start: segStart, Stop: d - 1, Label: iv.Label,
			})
			segStart = d
		}
		out = append(out, timeline.Interval{
			PersonID: iv.PersonID, Start: segStart, Stop: iv.Stop, Label: iv.Label,
		})
	}
	return out
}

// mergeIdentical re-merges adjacent intervals whose derived output is
// identical. The later interval's cumulative value survives, since it
// is the value at the merged interval's end.
func mergeIdentical(group []timeline.Derived) []timeline.Derived {
	if len(group) < 2 {
		return group
	}
	out := group[:0:0]
	cur := group[0]
	for _, next := range group[1:] {
		if next.Start == cur.Stop+1 && next.Label == cur.Label && sameCategories(cur.ByCategory, next.ByCategory) {
			cur.Stop = next.Stop
			cur.Value = next.Value
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

func sameCategories(a, b map[int64]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// bucket assigns a value to its band: 0 for nothing accumulated, then
// 1 + the number of cutpoints strictly exceeded. Band boundaries belong
// to the lower band; Epsilon absorbs float noise at the boundary.
func bucket(v float64, cuts []float64) float64 {
	if v <= timeline.Epsilon {
		return 0
	}
	b := 1.0
	for _, c := range cuts {
		if v > c+timeline.Epsilon {
			b++
		}
	}
	return b
}

type identityScanner struct{}

func (identityScanner) splits(timeline.Interval) []timeline.Day { return nil }
func (identityScanner) segment(iv timeline.Interval) (float64, float64) {
	return iv.Label, 0
}
