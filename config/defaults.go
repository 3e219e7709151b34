package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "survtime.db")

	// Engine defaults
	v.SetDefault("engine.representation", "none")
	v.SetDefault("engine.by_category", false)
	v.SetDefault("engine.policy", "layer")
	v.SetDefault("engine.label_kind", "category")
	v.SetDefault("engine.reference_label", 0)
	v.SetDefault("engine.merge_window", 0)
	v.SetDefault("engine.lag", 0)
	v.SetDefault("engine.grace", 0)
	v.SetDefault("engine.carry_forward", 0)
	v.SetDefault("engine.washout", 0)
	v.SetDefault("engine.unit", "day")
	v.SetDefault("engine.iteration_limit", 10000) // fixed-point safety cap

	// Events defaults
	v.SetDefault("events.mode", "single")
	v.SetDefault("events.rescale", []string{"value"})

	// Intersect defaults
	v.SetDefault("intersect.batch_size", 0) // 0 = size from available memory
	v.SetDefault("intersect.allow_mismatch", false)
}
