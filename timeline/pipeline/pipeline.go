// Package pipeline runs the full engine in stage order: normalize,
// resolve, complete, transform, and optionally split at events. Each
// stage fully materializes its output before the next begins, and all
// warnings land in one run report.
package pipeline

import (
	"sort"
	"strconv"
	"time"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
	"github.com/tpcopeland/survtime/timeline/cover"
	"github.com/tpcopeland/survtime/timeline/normalize"
	"github.com/tpcopeland/survtime/timeline/represent"
	"github.com/tpcopeland/survtime/timeline/resolve"
	"github.com/tpcopeland/survtime/timeline/split"
)

// Input is one run's raw tables.
type Input struct {
	Raw     []timeline.Interval
	Windows []timeline.Window
	Events  []timeline.Event
}

// Result is the terminal timeline with its run report.
type Result struct {
	Intervals []timeline.Derived
	Report    *timeline.Report
}

// Run executes the engine over one cohort. The configuration is
// validated up front; any violation aborts before processing.
func Run(in Input, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	report := timeline.NewReport()
	started := time.Now()

	windows, err := timeline.IndexWindows(in.Windows)
	if err != nil {
		return nil, err
	}

	eng := cfg.Engine
	var derived []timeline.Derived
	if eng.LabelKind == config.LabelKindDose {
		derived, err = runDose(in, windows, eng, report)
	} else {
		derived, err = runCategory(in, windows, eng, report)
	}
	if err != nil {
		return nil, err
	}

	if len(in.Events) > 0 || cfg.Events.Mode == config.EventModeRecurring {
		derived, err = split.AtEvents(derived, in.Events, SplitOptions(cfg.Events), report)
		if err != nil {
			return nil, err
		}
	}

	report.SetSummary(timeline.SummarizeDerived(derived, float64(eng.ReferenceLabel)))
	logger.Infow("run complete",
		"run_id", report.RunID,
		"intervals", len(derived),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return &Result{Intervals: derived, Report: report}, nil
}

// runCategory is the category-label path: normalize, resolve overlaps
// under the configured policy, complete coverage, then relabel.
func runCategory(in Input, windows map[string]timeline.Window, eng config.EngineConfig, report *timeline.Report) ([]timeline.Derived, error) {
	norm := normalize.Normalize(in.Raw, windows, normalize.Options{
		MergeWindow:    eng.MergeWindow,
		Lag:            eng.Lag,
		IterationLimit: eng.IterationLimit,
	}, report)

	// By-category accumulators cover every category present before
	// resolution, so categories a policy eliminates still get a column
	var categories []int64
	if eng.ByCategory {
		categories = distinctCategories(norm, eng.ReferenceLabel)
	}

	resolved, err := resolve.Resolve(norm, resolve.Options{
		Policy:         resolve.Policy(eng.Policy),
		PriorityOrder:  eng.PriorityOrder,
		MergeWindow:    eng.MergeWindow,
		IterationLimit: eng.IterationLimit,
	}, report)
	if err != nil {
		return nil, err
	}

	complete, err := cover.Complete(resolved, windows, cover.Options{
		Reference:    float64(eng.ReferenceLabel),
		Grace:        eng.Grace,
		GraceByLabel: graceByLabel(eng.GraceByLabel),
		CarryForward: eng.CarryForward,
		AllowOverlap: eng.Policy == config.PolicySplit,
	}, report)
	if err != nil {
		return nil, err
	}

	return represent.Transform(complete, represent.Options{
		Representation: represent.Representation(eng.Representation),
		Reference:      float64(eng.ReferenceLabel),
		Cutpoints:      eng.Cutpoints,
		UnitDivisor:    eng.UnitDivisor(),
		Washout:        eng.Washout,
		ByCategory:     eng.ByCategory,
		Categories:     categories,
	}, report)
}

// runDose is the dose-label path. Overlaps resolve by summing daily
// rates inside the dose transformer, so the category resolver never
// runs, and normalization keeps every row.
func runDose(in Input, windows map[string]timeline.Window, eng config.EngineConfig, report *timeline.Report) ([]timeline.Derived, error) {
	norm := normalize.Normalize(in.Raw, windows, normalize.Options{
		Lag:            eng.Lag,
		IterationLimit: eng.IterationLimit,
		KeepOverlaps:   true,
	}, report)

	return represent.TransformDose(norm, windows, represent.DoseOptions{
		Categorical: eng.Representation == config.RepDoseCategory,
		DoseCuts:    eng.DoseCutpoints,
	}, report)
}

// SplitOptions maps the events configuration onto split options. The
// split command reuses it when re-splitting a saved run.
func SplitOptions(ev config.EventsConfig) split.Options {
	opts := split.Options{Mode: split.Mode(ev.Mode)}
	for _, field := range ev.Rescale {
		switch field {
		case "value":
			opts.RescaleValue = true
		case "by_category":
			opts.RescaleByCategory = true
		}
	}
	return opts
}

// graceByLabel converts the TOML-keyed override table to label codes.
// Validate has already rejected non-numeric keys.
func graceByLabel(m map[string]int64) map[int64]int64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[int64]int64, len(m))
	for key, g := range m {
		label, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			panic(errors.AssertionFailedf("unvalidated grace_by_label key %q", key))
		}
		out[label] = g
	}
	return out
}

// distinctCategories lists the non-reference labels present, ascending.
func distinctCategories(ivs []timeline.Interval, reference int64) []int64 {
	seen := make(map[int64]bool)
	for _, iv := range ivs {
		label := int64(iv.Label)
		if label != reference {
			seen[label] = true
		}
	}
	out := make([]int64, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
