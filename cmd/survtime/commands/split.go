package commands

import (
	"database/sql"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/db"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/storage"
	"github.com/tpcopeland/survtime/timeline"
	"github.com/tpcopeland/survtime/timeline/pipeline"
	"github.com/tpcopeland/survtime/timeline/split"
)

// SplitCmd represents the split command
var SplitCmd = &cobra.Command{
	Use:   "split RUN_ID",
	Short: "Split a saved timeline at outcome events",
	Long: `Cut a previously saved run at the events table's dates without
re-running the whole pipeline. In single mode follow-up is truncated at
each person's earliest effective event; recurring mode cuts at every
event and keeps the full follow-up. The split timeline is saved under a
fresh run ID.

Examples:
  survtime split RUN1
  survtime split RUN1 --mode recurring`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

var (
	splitDatabaseFlag string
	splitModeFlag     string
)

func init() {
	SplitCmd.Flags().StringVar(&splitDatabaseFlag, "database", "", "Database path (overrides configuration)")
	SplitCmd.Flags().StringVar(&splitModeFlag, "mode", "", "Event mode, single or recurring (overrides configuration)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if splitDatabaseFlag != "" {
		cfg.Database.Path = splitDatabaseFlag
	}
	if splitModeFlag != "" {
		cfg.Events.Mode = splitModeFlag
	}

	database, err := db.OpenWithMigrations(cfg.Database.Path, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	report, out, err := splitStored(database, cfg, args[0])
	if err != nil {
		return err
	}

	printSummary(report)

	if err := storage.SaveTimeline(database, report.RunID, out); err != nil {
		return err
	}
	if err := storage.SaveReport(database, report); err != nil {
		return err
	}
	pterm.Success.Printf("Split timeline saved: run %s\n", report.RunID)
	return nil
}

// splitStored cuts one saved run's timeline at the stored events.
func splitStored(database *sql.DB, cfg *config.Config, runID string) (*timeline.Report, []timeline.Derived, error) {
	ds, err := storage.LoadTimeline(database, runID)
	if err != nil {
		return nil, nil, err
	}
	events, err := storage.LoadEvents(database)
	if err != nil {
		return nil, nil, err
	}
	if len(events) == 0 {
		return nil, nil, errors.NewDataQualityError("events table is empty; nothing to split run %s at", runID)
	}

	report := timeline.NewReport()
	out, err := split.AtEvents(ds, events, pipeline.SplitOptions(cfg.Events), report)
	if err != nil {
		return nil, nil, err
	}
	report.SetSummary(timeline.SummarizeDerived(out, float64(cfg.Engine.ReferenceLabel)))
	return report, out, nil
}
