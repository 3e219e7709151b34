package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/tpcopeland/survtime/errors"
)

// Default returns a Config populated entirely from defaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are static; failing to unmarshal them is a programming error
		panic(err)
	}
	return &config
}

// WriteTemplate writes a TOML config file populated with defaults so a
// user can edit it in place. Refuses to overwrite an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists: %s", path)
	}

	// pelletier renders the nested structs as TOML tables; mapstructure
	// tags double as TOML keys via the field names below
	out := map[string]interface{}{
		"database": map[string]interface{}{
			"path": "survtime.db",
		},
		"engine": map[string]interface{}{
			"representation":  RepNone,
			"by_category":     false,
			"policy":          PolicyLayer,
			"label_kind":      LabelKindCategory,
			"reference_label": 0,
			"merge_window":    0,
			"lag":             0,
			"grace":           0,
			"carry_forward":   0,
			"washout":         0,
			"unit":            "day",
			"iteration_limit": 10000,
		},
		"events": map[string]interface{}{
			"mode":    EventModeSingle,
			"rescale": []string{"value"},
		},
		"intersect": map[string]interface{}{
			"batch_size":     0,
			"allow_mismatch": false,
		},
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "marshal config template")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
