// Package intersect combines independently built timelines for the
// same cohort into one joint timeline whose intervals are the non-empty
// pairwise intersections of every input's intervals.
package intersect

import (
	"sort"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/internal/util"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Input is one timeline entering the intersection.
type Input struct {
	// Name identifies the input in diagnostics and column naming
	Name string

	Intervals []timeline.Derived

	// Continuous marks the input's labels as cumulative quantities that
	// must be re-proportioned whenever an intersection shortens the
	// interval carrying them
	Continuous bool
}

// Options controls the intersection.
type Options struct {
	// BatchSize is the number of persons processed per batch. Zero
	// derives a size from available memory.
	BatchSize int

	// AllowMismatch drops persons absent from any input with a warning
	// instead of failing the run
	AllowMismatch bool
}

// Intersect reduces two or more inputs left to right: input 1 with
// input 2, that result with input 3, and so on. Each output interval is
// [max(starts), min(stops)] of the contributing intervals, kept only
// when non-empty, and carries every input's label in SourceLabels in
// input order.
//
// Persons are processed in ID batches: each batch's per-person grouping
// is read through forward-only cursors over the person-sorted inputs
// and released before the next batch, so the grouped working set never
// exceeds one batch of persons.
//
// A person missing from any input is a cohort mismatch: an error by
// default, or dropped with a warning under AllowMismatch.
func Intersect(inputs []Input, opts Options, report *timeline.Report) ([]timeline.Derived, error) {
	if len(inputs) < 2 {
		return nil, errors.NewConfigurationError("intersection needs at least two inputs, got %d", len(inputs))
	}

	sorted := make([][]timeline.Derived, len(inputs))
	for i, in := range inputs {
		s := make([]timeline.Derived, len(in.Intervals))
		copy(s, in.Intervals)
		timeline.SortDerived(s)
		sorted[i] = s
	}

	ids, err := sharedIDs(inputs, sorted, opts, report)
	if err != nil {
		return nil, err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize()
	}

	cursors := make([]int, len(inputs))
	var out []timeline.Derived
	for lo := 0; lo < len(ids); lo += batchSize {
		hi := lo + batchSize
		if hi > len(ids) {
			hi = len(ids)
		}
		batch := ids[lo:hi]

		grouped := make([]map[string][]timeline.Derived, len(inputs))
		for i := range sorted {
			grouped[i], cursors[i] = groupBatch(sorted[i], cursors[i], batch)
		}
		for _, id := range batch {
			out = append(out, intersectPerson(id, inputs, grouped)...)
		}
	}

	timeline.SortDerived(out)
	logger.Debugw("intersected timelines",
		"inputs", len(inputs),
		"persons", len(ids),
		"intervals", len(out),
		"batch_size", batchSize,
	)
	return out, nil
}

// groupBatch collects the batch persons' intervals from pos onward.
// in is sorted by person and batches arrive in ascending person order,
// so pos only ever moves forward; rows for persons outside the shared
// cohort are skipped as the cursor passes them.
func groupBatch(in []timeline.Derived, pos int, batch []string) (map[string][]timeline.Derived, int) {
	want := make(map[string]bool, len(batch))
	for _, id := range batch {
		want[id] = true
	}
	last := batch[len(batch)-1]

	g := make(map[string][]timeline.Derived, len(batch))
	for pos < len(in) && in[pos].PersonID <= last {
		if want[in[pos].PersonID] {
			g[in[pos].PersonID] = append(g[in[pos].PersonID], in[pos])
		}
		pos++
	}
	return g, pos
}

// sharedIDs returns the person IDs present in every input, sorted.
func sharedIDs(inputs []Input, sorted [][]timeline.Derived, opts Options, report *timeline.Report) ([]string, error) {
	present := make([]map[string]bool, len(sorted))
	union := make(map[string]bool)
	for i, s := range sorted {
		present[i] = make(map[string]bool)
		for _, d := range s {
			present[i][d.PersonID] = true
			union[d.PersonID] = true
		}
	}

	var ids []string
	mismatched := 0
	for id := range union {
		missing := ""
		for i, p := range present {
			if !p[id] {
				missing = inputs[i].Name
				break
			}
		}
		if missing == "" {
			ids = append(ids, id)
			continue
		}
		mismatched++
		if opts.AllowMismatch {
			report.Warnf(timeline.WarnIDMismatch, id, "person missing from input %q, dropped", missing)
		}
	}
	if mismatched > 0 && !opts.AllowMismatch {
		return nil, errors.Wrapf(errors.ErrCohortMismatch,
			"%d of %d persons missing from at least one input", mismatched, len(union))
	}

	sort.Strings(ids)
	return ids, nil
}

// intersectPerson reduces one person's timelines left to right.
func intersectPerson(id string, inputs []Input, grouped []map[string][]timeline.Derived) []timeline.Derived {
	acc := make([]timeline.Derived, 0, len(grouped[0][id]))
	for _, d := range grouped[0][id] {
		j := d
		j.SourceLabels = []float64{d.Label}
		acc = append(acc, j)
	}

	continuous := []bool{inputs[0].Continuous}
	for i := 1; i < len(inputs); i++ {
		acc = combine(acc, grouped[i][id], continuous, inputs[i].Continuous)
		continuous = append(continuous, inputs[i].Continuous)
	}
	return acc
}

// combine intersects the accumulated timeline with one more input using
// a two-pointer sweep over both sorted interval lists. Continuous
// labels already accumulated are re-proportioned by the new length over
// the accumulated interval's length before this combination; the
// incoming label, when continuous, by the new length over its own
// interval's length.
func combine(acc []timeline.Derived, next []timeline.Derived, continuous []bool, nextContinuous bool) []timeline.Derived {
	var out []timeline.Derived
	i, j := 0, 0
	for i < len(acc) && j < len(next) {
		a, b := acc[i], next[j]
		lo := util.MaxDay(a.Start, b.Start)
		hi := util.MinDay(a.Stop, b.Stop)
		if lo <= hi {
			newLen := hi - lo + 1
			labels := make([]float64, len(a.SourceLabels)+1)
			for k, l := range a.SourceLabels {
				if continuous[k] {
					l *= float64(newLen) / float64(a.Length())
				}
				labels[k] = l
			}
			nl := b.Label
			if nextContinuous {
				nl *= float64(newLen) / float64(b.Length())
			}
			labels[len(labels)-1] = nl

			piece := a
			piece.Start = lo
			piece.Stop = hi
			piece.SourceLabels = labels
			piece.Label = labels[0]
			out = append(out, piece)
		}
		if a.Stop <= b.Stop {
			i++
		} else {
			j++
		}
	}
	return out
}
