// Package timeline defines the core value types of the survtime engine:
// day-granular intervals, study windows, outcome events, and the run
// report that accumulates data-quality warnings and summary statistics.
//
// All dates are integer day counts. Intervals are closed on both ends, so
// an interval [start, stop] covers stop-start+1 days. Every stage of the
// engine consumes and produces new slices; nothing is mutated in place
// once a later stage owns it.
package timeline

import (
	"sort"

	"github.com/tpcopeland/survtime/errors"
)

// Day is an integer day count. Sub-day resolution is rejected at load.
type Day = int64

// Epsilon is the tolerance for category-boundary comparisons on
// cumulative values. It is never used for date arithmetic, which stays
// exact in integer days.
const Epsilon = 0.001

// Interval is one closed [Start, Stop] day-range with one label, for one
// person. Label carries either an integer category code or a dose amount
// depending on the run's label kind.
type Interval struct {
	PersonID string
	Start    Day
	Stop     Day
	Label    float64
}

// Length returns the number of days the interval covers.
func (iv Interval) Length() int64 {
	return iv.Stop - iv.Start + 1
}

// Valid reports whether Start <= Stop.
func (iv Interval) Valid() bool {
	return iv.Start <= iv.Stop
}

// Overlaps reports whether iv and other share at least one day.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.Stop && other.Start <= iv.Stop
}

// Contains reports whether other lies fully inside iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.Stop <= iv.Stop
}

// Is reports whether the interval carries the given category code.
func (iv Interval) Is(label float64) bool {
	return iv.Label == label
}

// Window is one person's study window. The final timeline must tile
// [Entry, Exit] exactly.
type Window struct {
	PersonID string
	Entry    Day
	Exit     Day
}

// Length returns the number of days in the window.
func (w Window) Length() int64 {
	return w.Exit - w.Entry + 1
}

// Event is one outcome or competing event. Kind 1 is the primary
// outcome; kinds 2 and above are competing events ranked by declaration
// order. Only the earliest event per person is effective.
type Event struct {
	PersonID string
	Date     Day
	Kind     int
}

// Derived is a resolved interval plus the fields a representation or a
// later stage computes for it.
type Derived struct {
	Interval

	// Value is the continuous cumulative measure (exposure-time or dose)
	// for the cumulative and dose representations
	Value float64

	// Status is the terminal status set by the event splitter:
	// 0 censored, 1 primary event, 2+ competing events
	Status int

	// ByCategory holds one accumulator per raw category for the
	// by-category representation variant. Nil when not in use.
	ByCategory map[int64]float64

	// SourceLabels carries the label from each input timeline after
	// intersection, in input order. Nil before intersection.
	SourceLabels []float64
}

// SortIntervals orders intervals by (person, start, stop, label). Every
// stage sorts its input once so per-person scans are deterministic.
func SortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		a, b := ivs[i], ivs[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Stop != b.Stop {
			return a.Stop < b.Stop
		}
		return a.Label < b.Label
	})
}

// SortDerived orders derived intervals by (person, start, stop).
func SortDerived(ds []Derived) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Stop < b.Stop
	})
}

// ByPerson groups intervals by person, returning person IDs in sorted
// order for deterministic iteration. The input is not modified.
func ByPerson(ivs []Interval) ([]string, map[string][]Interval) {
	groups := make(map[string][]Interval)
	for _, iv := range ivs {
		groups[iv.PersonID] = append(groups[iv.PersonID], iv)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool {
			if g[i].Start != g[j].Start {
				return g[i].Start < g[j].Start
			}
			return g[i].Stop < g[j].Stop
		})
	}
	return ids, groups
}

// DerivedByPerson groups derived intervals by person with sorted IDs.
func DerivedByPerson(ds []Derived) ([]string, map[string][]Derived) {
	groups := make(map[string][]Derived)
	for _, d := range ds {
		groups[d.PersonID] = append(groups[d.PersonID], d)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Start < g[j].Start })
	}
	return ids, groups
}

// IndexWindows builds a person lookup over study windows. A window with
// entry > exit is a configuration defect and aborts the run; a duplicate
// person ID is a schema defect.
func IndexWindows(windows []Window) (map[string]Window, error) {
	if len(windows) == 0 {
		return nil, errors.ErrEmptyInput
	}

	index := make(map[string]Window, len(windows))
	for _, w := range windows {
		if w.Entry > w.Exit {
			return nil, errors.NewConfigurationError(
				"study window for %s has entry %d after exit %d", w.PersonID, w.Entry, w.Exit)
		}
		if _, dup := index[w.PersonID]; dup {
			return nil, errors.NewSchemaError("duplicate study window for %s", w.PersonID)
		}
		index[w.PersonID] = w
	}
	return index, nil
}
