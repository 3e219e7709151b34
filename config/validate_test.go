package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpcopeland/survtime/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, PolicyLayer, cfg.Engine.Policy)
	assert.Equal(t, RepNone, cfg.Engine.Representation)
	assert.Equal(t, 10000, cfg.Engine.IterationLimit)
	assert.Equal(t, EventModeSingle, cfg.Events.Mode)
	assert.Equal(t, "survtime.db", cfg.Database.Path)
}

func TestValidateRejections(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{
			name:    "unknown representation",
			mutate:  func(c *Config) { c.Engine.Representation = "sometimes" },
			message: "unknown representation",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Engine.Policy = "wishful" },
			message: "unknown overlap policy",
		},
		{
			name:    "unknown unit",
			mutate:  func(c *Config) { c.Engine.Unit = "fortnight" },
			message: "unknown unit",
		},
		{
			name: "cutpoints not ascending",
			mutate: func(c *Config) {
				c.Engine.Representation = RepDurationCategory
				c.Engine.Cutpoints = []float64{30, 30, 90}
			},
			message: "strictly ascending",
		},
		{
			name:    "priority order without priority policy",
			mutate:  func(c *Config) { c.Engine.PriorityOrder = []int64{2, 1} },
			message: "only valid with policy = priority",
		},
		{
			name:    "priority policy without order",
			mutate:  func(c *Config) { c.Engine.Policy = PolicyPriority },
			message: "requires a priority_order",
		},
		{
			name: "duplicate priority label",
			mutate: func(c *Config) {
				c.Engine.Policy = PolicyPriority
				c.Engine.PriorityOrder = []int64{2, 1, 2}
			},
			message: "repeats label",
		},
		{
			name:    "negative grace",
			mutate:  func(c *Config) { c.Engine.Grace = -5 },
			message: "must be >= 0",
		},
		{
			name:    "dose representation with category labels",
			mutate:  func(c *Config) { c.Engine.Representation = RepDose },
			message: "requires label_kind = dose",
		},
		{
			name: "category representation with dose labels",
			mutate: func(c *Config) {
				c.Engine.LabelKind = LabelKindDose
				c.Engine.Representation = RepEver
			},
			message: "requires label_kind = category",
		},
		{
			name: "duration category without cutpoints",
			mutate: func(c *Config) {
				c.Engine.Representation = RepDurationCategory
			},
			message: "requires cutpoints",
		},
		{
			name: "dose category without dose cutpoints",
			mutate: func(c *Config) {
				c.Engine.LabelKind = LabelKindDose
				c.Engine.Representation = RepDoseCategory
			},
			message: "requires dose_cutpoints",
		},
		{
			name:    "zero iteration limit",
			mutate:  func(c *Config) { c.Engine.IterationLimit = 0 },
			message: "iteration_limit",
		},
		{
			name:    "unknown rescale field",
			mutate:  func(c *Config) { c.Events.Rescale = []string{"doses"} },
			message: "unknown rescale field",
		},
		{
			name:    "bad grace_by_label key",
			mutate:  func(c *Config) { c.Engine.GraceByLabel = map[string]int64{"statin": 30} },
			message: "not a label code",
		},
		{
			name: "by_category on a dose representation",
			mutate: func(c *Config) {
				c.Engine.Representation = RepDose
				c.Engine.LabelKind = LabelKindDose
				c.Engine.ByCategory = true
			},
			message: "by_category",
		},
		{
			name: "overlap policy on a dose run",
			mutate: func(c *Config) {
				c.Engine.LabelKind = LabelKindDose
				c.Engine.Representation = RepDose
				c.Engine.Policy = PolicyCombine
			},
			message: "does not apply to dose runs",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestGraceFor(t *testing.T) {
	cfg := Default()
	cfg.Engine.Grace = 14
	cfg.Engine.GraceByLabel = map[string]int64{"2": 30}

	assert.Equal(t, int64(14), cfg.Engine.GraceFor(1))
	assert.Equal(t, int64(30), cfg.Engine.GraceFor(2))
}

func TestUnitDivisor(t *testing.T) {
	e := EngineConfig{Unit: "day"}
	assert.Equal(t, 1.0, e.UnitDivisor())

	e.Unit = "week"
	assert.Equal(t, 7.0, e.UnitDivisor())

	e.Unit = "year"
	assert.Equal(t, 365.25, e.UnitDivisor())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survtime.toml")

	require.NoError(t, WriteTemplate(path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PolicyLayer, cfg.Engine.Policy)

	// Refuses to clobber an existing file
	assert.Error(t, WriteTemplate(path))
}
