package db

import (
	"database/sql"

	"github.com/tpcopeland/survtime/errors"
)

// TableStats is the row count per user table, for the db stats command.
type TableStats struct {
	RawIntervals int64
	StudyWindows int64
	Events       int64
	Timelines    int64
	RunReports   int64
}

// Stats counts the rows in each table.
func Stats(db *sql.DB) (*TableStats, error) {
	s := &TableStats{}
	for table, dest := range map[string]*int64{
		"raw_intervals": &s.RawIntervals,
		"study_windows": &s.StudyWindows,
		"events":        &s.Events,
		"timelines":     &s.Timelines,
		"run_reports":   &s.RunReports,
	} {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(dest); err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
	}
	return s, nil
}
