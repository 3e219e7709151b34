package config

import (
	"strconv"

	"github.com/tpcopeland/survtime/errors"
)

// Representation names accepted by engine.representation
const (
	RepNone             = "none"
	RepEver             = "ever"
	RepCurrentFormer    = "current_former"
	RepDurationCategory = "duration_category"
	RepCumulative       = "cumulative"
	RepRecency          = "recency"
	RepDose             = "dose"
	RepDoseCategory     = "dose_category"
)

// Policy names accepted by engine.policy
const (
	PolicyLayer    = "layer"
	PolicyPriority = "priority"
	PolicySplit    = "split"
	PolicyCombine  = "combine"
)

// Label kinds accepted by engine.label_kind
const (
	LabelKindCategory = "category"
	LabelKindDose     = "dose"
)

// Event modes accepted by events.mode
const (
	EventModeSingle    = "single"
	EventModeRecurring = "recurring"
)

// Validate checks that the configuration is internally consistent.
// Every violation is a ConfigurationError and aborts before any
// processing begins.
func (c *Config) Validate() error {
	switch c.Engine.Representation {
	case RepNone, RepEver, RepCurrentFormer, RepDurationCategory,
		RepCumulative, RepRecency, RepDose, RepDoseCategory:
	default:
		return errors.NewConfigurationError("unknown representation %q", c.Engine.Representation)
	}

	switch c.Engine.Policy {
	case PolicyLayer, PolicyPriority, PolicySplit, PolicyCombine:
	default:
		return errors.NewConfigurationError("unknown overlap policy %q", c.Engine.Policy)
	}

	switch c.Engine.LabelKind {
	case LabelKindCategory, LabelKindDose:
	default:
		return errors.NewConfigurationError("unknown label kind %q", c.Engine.LabelKind)
	}

	switch c.Engine.Unit {
	case "day", "week", "month", "year":
	default:
		return errors.NewConfigurationError("unknown unit %q (expected day, week, month, or year)", c.Engine.Unit)
	}

	switch c.Events.Mode {
	case EventModeSingle, EventModeRecurring:
	default:
		return errors.NewConfigurationError("unknown event mode %q", c.Events.Mode)
	}

	// Dose representations operate on dose labels, category
	// representations on category labels; the label kind is fixed per
	// run and never mixed.
	doseRep := c.Engine.Representation == RepDose || c.Engine.Representation == RepDoseCategory
	if doseRep && c.Engine.LabelKind != LabelKindDose {
		return errors.NewConfigurationError(
			"representation %q requires label_kind = dose", c.Engine.Representation)
	}
	if !doseRep && c.Engine.LabelKind == LabelKindDose && c.Engine.Representation != RepNone {
		return errors.NewConfigurationError(
			"representation %q requires label_kind = category", c.Engine.Representation)
	}

	if c.Engine.ByCategory && (doseRep || c.Engine.Representation == RepNone) {
		return errors.NewConfigurationError(
			"by_category requires a category representation, not %q", c.Engine.Representation)
	}

	// Dose runs resolve overlaps by summing daily rates, so the
	// category overlap policies never apply to them
	if c.Engine.LabelKind == LabelKindDose && c.Engine.Policy != PolicyLayer {
		return errors.NewConfigurationError(
			"policy %q does not apply to dose runs; overlapping doses sum", c.Engine.Policy)
	}

	// Priority order and the priority policy come and go together
	if c.Engine.Policy == PolicyPriority && len(c.Engine.PriorityOrder) == 0 {
		return errors.NewConfigurationError("policy = priority requires a priority_order")
	}
	if c.Engine.Policy != PolicyPriority && len(c.Engine.PriorityOrder) > 0 {
		return errors.NewConfigurationError(
			"priority_order is only valid with policy = priority (policy is %q)", c.Engine.Policy)
	}
	if seen := duplicateLabel(c.Engine.PriorityOrder); seen != nil {
		return errors.NewConfigurationError("priority_order repeats label %d", *seen)
	}

	if err := ascending(c.Engine.Cutpoints, "cutpoints"); err != nil {
		return err
	}
	if err := ascending(c.Engine.DoseCutpoints, "dose_cutpoints"); err != nil {
		return err
	}

	if c.Engine.Representation == RepDurationCategory && len(c.Engine.Cutpoints) == 0 {
		return errors.NewConfigurationError("representation = duration_category requires cutpoints")
	}
	if c.Engine.Representation == RepRecency && len(c.Engine.Cutpoints) == 0 {
		return errors.NewConfigurationError("representation = recency requires cutpoints")
	}
	if c.Engine.Representation == RepDoseCategory && len(c.Engine.DoseCutpoints) == 0 {
		return errors.NewConfigurationError("representation = dose_category requires dose_cutpoints")
	}

	for name, value := range map[string]int64{
		"merge_window":  c.Engine.MergeWindow,
		"lag":           c.Engine.Lag,
		"grace":         c.Engine.Grace,
		"carry_forward": c.Engine.CarryForward,
		"washout":       c.Engine.Washout,
	} {
		if value < 0 {
			return errors.NewConfigurationError("engine.%s must be >= 0, got %d", name, value)
		}
	}
	for key, g := range c.Engine.GraceByLabel {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			return errors.NewConfigurationError("grace_by_label key %q is not a label code", key)
		}
		if g < 0 {
			return errors.NewConfigurationError("grace_by_label[%s] must be >= 0, got %d", key, g)
		}
	}

	if c.Engine.IterationLimit <= 0 {
		return errors.NewConfigurationError("iteration_limit must be > 0, got %d", c.Engine.IterationLimit)
	}

	for _, field := range c.Events.Rescale {
		if field != "value" && field != "by_category" {
			return errors.NewConfigurationError("unknown rescale field %q (expected value or by_category)", field)
		}
	}

	if c.Intersect.BatchSize < 0 {
		return errors.NewConfigurationError("intersect.batch_size must be >= 0, got %d", c.Intersect.BatchSize)
	}

	return nil
}

// GraceFor returns the grace period for a label, honoring per-label
// overrides before the global value.
func (e EngineConfig) GraceFor(label int64) int64 {
	if g, ok := e.GraceByLabel[strconv.FormatInt(label, 10)]; ok {
		return g
	}
	return e.Grace
}

func ascending(cuts []float64, name string) error {
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			return errors.NewConfigurationError(
				"%s must be strictly ascending: %v <= %v at position %d", name, cuts[i], cuts[i-1], i)
		}
	}
	return nil
}

func duplicateLabel(labels []int64) *int64 {
	seen := make(map[int64]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			v := l
			return &v
		}
		seen[l] = true
	}
	return nil
}
