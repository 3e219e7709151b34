package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/db"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/storage"
	"github.com/tpcopeland/survtime/timeline"
	"github.com/tpcopeland/survtime/timeline/pipeline"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine over the database's input tables",
	Long: `Run the full pipeline: normalize raw periods, resolve overlaps,
complete coverage, apply the configured representation, and split at
events when the events table has rows. The resulting timeline and run
report are saved under a fresh run ID.

Examples:
  survtime run                     # Run and save
  survtime run --dry-run           # Run, print the summary, discard output
  survtime run --database trial.db # Run against another database`,
	RunE: runRun,
}

var (
	runDatabaseFlag string
	runDryRunFlag   bool
)

func init() {
	RunCmd.Flags().StringVar(&runDatabaseFlag, "database", "", "Database path (overrides configuration)")
	RunCmd.Flags().BoolVar(&runDryRunFlag, "dry-run", false, "Run without saving the output")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if runDatabaseFlag != "" {
		cfg.Database.Path = runDatabaseFlag
	}

	database, err := db.OpenWithMigrations(cfg.Database.Path, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	raw, err := storage.LoadIntervals(database)
	if err != nil {
		return err
	}
	windows, err := storage.LoadWindows(database)
	if err != nil {
		return err
	}
	events, err := storage.LoadEvents(database)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(pipeline.Input{Raw: raw, Windows: windows, Events: events}, cfg)
	if err != nil {
		return err
	}

	printSummary(result.Report)

	if runDryRunFlag {
		pterm.Info.Println("Dry run: output discarded")
		return nil
	}

	if err := storage.SaveTimeline(database, result.Report.RunID, result.Intervals); err != nil {
		return err
	}
	if err := storage.SaveReport(database, result.Report); err != nil {
		return err
	}
	pterm.Success.Printf("Timeline saved: run %s\n", result.Report.RunID)
	return nil
}

func printSummary(report *timeline.Report) {
	s := report.Summary()

	pterm.DefaultTable.WithData(pterm.TableData{
		{"Persons", fmt.Sprintf("%d", s.Persons)},
		{"Intervals", fmt.Sprintf("%d", s.Intervals)},
		{"Total days", fmt.Sprintf("%d", s.TotalDays)},
		{"Exposed days", fmt.Sprintf("%d", s.ExposedDays)},
		{"Unexposed days", fmt.Sprintf("%d", s.UnexposedDays)},
		{"Percent exposed", fmt.Sprintf("%.1f%%", s.PercentExposed)},
	}).Render()

	for _, w := range report.Warnings() {
		if w.Count > 1 {
			pterm.Warning.Printf("[%s] %s (%d occurrences)\n", w.Code, w.Message, w.Count)
		} else {
			pterm.Warning.Printf("[%s] %s\n", w.Code, w.Message)
		}
	}
}
