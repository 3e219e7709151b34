package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
	Long: `Inspect the effective configuration after defaults, config files, and
SURVTIME_* environment variables are merged, or write a commented
template to start from.

Examples:
  survtime config show             # Show effective configuration
  survtime config init             # Write survtime.toml in the current directory`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load configuration")
		}
		if err := cfg.Validate(); err != nil {
			pterm.Warning.Printf("Configuration is invalid: %v\n", err)
		}

		// Render from viper's merged settings so keys match the file format
		out, err := toml.Marshal(config.GetViper().AllSettings())
		if err != nil {
			return errors.Wrap(err, "render configuration")
		}
		fmt.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "survtime.toml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteTemplate(path); err != nil {
			return err
		}
		pterm.Success.Printf("Configuration template written to %s\n", path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configInitCmd)
}
