package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/cmd/survtime/commands"
	"github.com/tpcopeland/survtime/logger"
)

var (
	verbosity  int
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "survtime",
	Short: "survtime - exposure timeline engine for time-to-event analysis",
	Long: `survtime converts irregular per-person exposure periods into complete
non-overlapping timelines for time-to-event analysis.

Raw periods are cleaned, overlaps between categories are resolved under
an explicit policy, every person's observation window is tiled without
gaps, and the result can be relabeled under alternative exposure
representations, cut at outcome events, or intersected with other
timelines.

Available commands:
  run        - Run the engine over the database's input tables
  split      - Split a saved timeline at outcome events
  intersect  - Intersect timelines from previous runs
  config     - Show or initialize configuration
  db         - Manage the survtime database
  version    - Show version information

Examples:
  survtime config init             # Write a commented config template
  survtime run                     # Run with survtime.toml settings
  survtime run --dry-run           # Run without saving output
  survtime split RUN1              # Re-split a saved timeline at events
  survtime intersect RUN1 RUN2     # Intersect two saved timelines
  survtime db stats                # Show table row counts`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.SplitCmd)
	rootCmd.AddCommand(commands.IntersectCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
