package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// SaveTimeline writes a run's terminal intervals to the timelines
// table in one transaction. By-category and source-label columns are
// JSON and null for runs that do not produce them.
func SaveTimeline(db *sql.DB, runID string, ds []timeline.Derived) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin timeline tx")
	}

	stmt, err := tx.Prepare(`
		INSERT INTO timelines (run_id, person_id, start, stop, label, value, status, by_category, source_labels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare timeline insert")
	}
	defer stmt.Close()

	for _, d := range ds {
		byCategory, err := nullableJSON(d.ByCategory)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "encode by_category for person %s", d.PersonID)
		}
		sourceLabels, err := nullableJSON(d.SourceLabels)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "encode source_labels for person %s", d.PersonID)
		}
		if _, err := stmt.Exec(runID, d.PersonID, d.Start, d.Stop, d.Label, d.Value, d.Status, byCategory, sourceLabels); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert timeline row for person %s", d.PersonID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit timeline tx")
	}

	logger.Debugw("saved timeline", "run_id", runID, "intervals", len(ds))
	return nil
}

// SaveReport writes the run report: summary statistics and the
// accumulated warnings, both as JSON.
func SaveReport(db *sql.DB, report *timeline.Report) error {
	summary, err := json.Marshal(report.Summary())
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	warnings, err := json.Marshal(report.Warnings())
	if err != nil {
		return errors.Wrap(err, "encode warnings")
	}

	if _, err := db.Exec(
		"INSERT INTO run_reports (run_id, summary, warnings) VALUES (?, ?, ?)",
		report.RunID, string(summary), string(warnings),
	); err != nil {
		return errors.Wrap(err, "insert run report")
	}
	return nil
}

// nullableJSON marshals a map or slice to JSON, or NULL when empty.
func nullableJSON(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[int64]float64:
		if len(t) == 0 {
			return nil, nil
		}
	case []float64:
		if len(t) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
