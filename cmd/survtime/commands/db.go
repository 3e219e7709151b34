package commands

import (
	"database/sql"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/db"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the survtime database",
	Long: `Manage the SQLite database holding the input and output tables.

Examples:
  survtime db migrate              # Apply pending schema migrations
  survtime db stats                # Show table row counts`,
}

var dbDatabaseFlag string

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openConfigured()
		if err != nil {
			return err
		}
		defer database.Close()
		pterm.Success.Println("Database schema is up to date")
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show table row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openConfigured()
		if err != nil {
			return err
		}
		defer database.Close()

		stats, err := db.Stats(database)
		if err != nil {
			return err
		}

		pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
			{"Table", "Rows"},
			{"raw_intervals", fmt.Sprintf("%d", stats.RawIntervals)},
			{"study_windows", fmt.Sprintf("%d", stats.StudyWindows)},
			{"events", fmt.Sprintf("%d", stats.Events)},
			{"timelines", fmt.Sprintf("%d", stats.Timelines)},
			{"run_reports", fmt.Sprintf("%d", stats.RunReports)},
		}).Render()
		return nil
	},
}

func init() {
	DbCmd.PersistentFlags().StringVar(&dbDatabaseFlag, "database", "", "Database path (overrides configuration)")
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func openConfigured() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	path := cfg.Database.Path
	if dbDatabaseFlag != "" {
		path = dbDatabaseFlag
	}
	conn, err := db.OpenWithMigrations(path, logger.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return conn, nil
}
