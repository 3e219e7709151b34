// Package config owns the survtime option surface: every representation,
// policy, and day-count parameter the engine accepts, with documented
// defaults and fail-fast validation. Options load from TOML files and
// SURVTIME_* environment variables through Viper; nothing is persisted
// between runs.
package config

// Config represents the full survtime configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Events    EventsConfig    `mapstructure:"events"`
	Intersect IntersectConfig `mapstructure:"intersect"`
}

// DatabaseConfig configures the SQLite database holding the input and
// output tables
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// EngineConfig configures the timeline engine proper
type EngineConfig struct {
	// Representation selects how resolved intervals are relabeled.
	// One of: none, ever, current_former, duration_category, cumulative,
	// recency, dose, dose_category.
	Representation string `mapstructure:"representation"`

	// ByCategory maintains one independent accumulator per raw category
	// instead of a single pooled state
	ByCategory bool `mapstructure:"by_category"`

	// Policy selects overlap resolution. One of: layer, priority, split,
	// combine. Layer is the default.
	Policy string `mapstructure:"policy"`

	// PriorityOrder is the total order over labels for the priority
	// policy, highest priority first. Required when policy = priority,
	// rejected otherwise.
	PriorityOrder []int64 `mapstructure:"priority_order"`

	// LabelKind is either "category" (integer codes) or "dose"
	// (non-negative daily amounts). Fixed per run, never mixed.
	LabelKind string `mapstructure:"label_kind"`

	// ReferenceLabel is the sentinel meaning "no exposure" (default 0)
	ReferenceLabel int64 `mapstructure:"reference_label"`

	// MergeWindow is the maximum gap in days between two same-label
	// periods that the normalizer merges into one (default 0)
	MergeWindow int64 `mapstructure:"merge_window"`

	// Lag shifts every raw interval forward by this many days before
	// clipping, modeling an induction period (default 0)
	Lag int64 `mapstructure:"lag"`

	// Grace is the maximum gap in days between two same-label intervals
	// bridged during coverage completion (default 0)
	Grace int64 `mapstructure:"grace"`

	// GraceByLabel overrides Grace per label code. Keys are label codes
	// rendered as strings (TOML table keys).
	GraceByLabel map[string]int64 `mapstructure:"grace_by_label"`

	// CarryForward is the number of days after an exposure ends during
	// which its label is still assigned before reverting to reference
	CarryForward int64 `mapstructure:"carry_forward"`

	// Washout is the number of unexposed days after which a person's
	// exposure state reverts to never. 0 means the representation
	// default (recency uses 10x its largest cutpoint).
	Washout int64 `mapstructure:"washout"`

	// Cutpoints are the ascending duration-band boundaries for the
	// duration_category and recency representations
	Cutpoints []float64 `mapstructure:"cutpoints"`

	// DoseCutpoints are the ascending cumulative-dose boundaries for the
	// dose_category representation
	DoseCutpoints []float64 `mapstructure:"dose_cutpoints"`

	// Unit names the divisor applied to continuous cumulative values.
	// One of: day, week, month, year.
	Unit string `mapstructure:"unit"`

	// IterationLimit caps every fixed-point loop (default 10000).
	// Exhaustion is a data-quality warning, never a crash.
	IterationLimit int `mapstructure:"iteration_limit"`
}

// EventsConfig configures outcome-event splitting
type EventsConfig struct {
	// Mode is "single" (truncate follow-up at the earliest effective
	// event) or "recurring" (split at every event, never truncate)
	Mode string `mapstructure:"mode"`

	// Rescale names the cumulative covariates rescaled proportionally on
	// a split interval. Recognized: "value", "by_category".
	Rescale []string `mapstructure:"rescale"`
}

// IntersectConfig configures the timeline intersector
type IntersectConfig struct {
	// BatchSize is the number of persons processed per batch.
	// 0 derives a batch size from available memory.
	BatchSize int `mapstructure:"batch_size"`

	// AllowMismatch drops person IDs absent from any input with a
	// warning instead of failing the run
	AllowMismatch bool `mapstructure:"allow_mismatch"`
}

// Unit divisors in days. Month and year use the mean Gregorian lengths so
// cumulative values stay consistent across leap years.
const (
	DaysPerWeek  = 7.0
	DaysPerMonth = 30.4375
	DaysPerYear  = 365.25
)

// UnitDivisor returns the day divisor for the configured unit name.
// Validate guarantees the name is known before the engine runs.
func (e EngineConfig) UnitDivisor() float64 {
	switch e.Unit {
	case "week":
		return DaysPerWeek
	case "month":
		return DaysPerMonth
	case "year":
		return DaysPerYear
	default:
		return 1
	}
}
