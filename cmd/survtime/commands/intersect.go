package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/db"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/storage"
	"github.com/tpcopeland/survtime/timeline"
	"github.com/tpcopeland/survtime/timeline/intersect"
)

// IntersectCmd represents the intersect command
var IntersectCmd = &cobra.Command{
	Use:   "intersect RUN_ID RUN_ID [RUN_ID...]",
	Short: "Intersect saved timelines into one joint timeline",
	Long: `Intersect two or more saved runs for the same cohort. Each output
interval is the overlap of one interval from every input and carries
every input's label.

A person missing from any input fails the run unless --allow-mismatch
drops them with a warning. Runs whose labels are continuous cumulative
values are named with --continuous so their labels are re-proportioned
when intersection shortens an interval.

Examples:
  survtime intersect RUN1 RUN2
  survtime intersect RUN1 RUN2 --continuous RUN2
  survtime intersect RUN1 RUN2 RUN3 --allow-mismatch`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIntersect,
}

var (
	intersectDatabaseFlag   string
	intersectContinuousFlag []string
	intersectMismatchFlag   bool
)

func init() {
	IntersectCmd.Flags().StringVar(&intersectDatabaseFlag, "database", "", "Database path (overrides configuration)")
	IntersectCmd.Flags().StringSliceVar(&intersectContinuousFlag, "continuous", nil, "Run IDs whose labels are continuous")
	IntersectCmd.Flags().BoolVar(&intersectMismatchFlag, "allow-mismatch", false, "Drop persons missing from any input instead of failing")
}

func runIntersect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if intersectDatabaseFlag != "" {
		cfg.Database.Path = intersectDatabaseFlag
	}

	database, err := db.OpenWithMigrations(cfg.Database.Path, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer database.Close()

	continuous := make(map[string]bool, len(intersectContinuousFlag))
	for _, id := range intersectContinuousFlag {
		continuous[id] = true
	}

	inputs := make([]intersect.Input, 0, len(args))
	for _, runID := range args {
		ds, err := storage.LoadTimeline(database, runID)
		if err != nil {
			return err
		}
		inputs = append(inputs, intersect.Input{
			Name:       runID,
			Intervals:  ds,
			Continuous: continuous[runID],
		})
	}

	report := timeline.NewReport()
	joint, err := intersect.Intersect(inputs, intersect.Options{
		BatchSize:     cfg.Intersect.BatchSize,
		AllowMismatch: cfg.Intersect.AllowMismatch || intersectMismatchFlag,
	}, report)
	if err != nil {
		return err
	}

	report.SetSummary(timeline.SummarizeDerived(joint, 0))
	printSummary(report)

	if err := storage.SaveTimeline(database, report.RunID, joint); err != nil {
		return err
	}
	if err := storage.SaveReport(database, report); err != nil {
		return err
	}
	pterm.Success.Printf("Joint timeline saved: run %s\n", report.RunID)
	return nil
}
