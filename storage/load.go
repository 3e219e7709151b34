// Package storage moves the engine's tables in and out of SQLite:
// raw intervals, study windows, and events on the way in, timelines and
// run reports on the way out.
package storage

import (
	"database/sql"
	"encoding/json"
	"math"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// LoadIntervals reads the raw_intervals table. Dates carrying sub-day
// precision are a schema error: truncating them would silently corrupt
// every downstream day computation (lag, grace, washout).
func LoadIntervals(db *sql.DB) ([]timeline.Interval, error) {
	rows, err := db.Query("SELECT person_id, start, stop, label FROM raw_intervals")
	if err != nil {
		return nil, errors.Wrap(err, "query raw_intervals")
	}
	defer rows.Close()

	var out []timeline.Interval
	for rows.Next() {
		var iv timeline.Interval
		var start, stop float64
		if err := rows.Scan(&iv.PersonID, &start, &stop, &iv.Label); err != nil {
			return nil, errors.NewSchemaError("raw_intervals holds a non-numeric column: %v", err)
		}
		if iv.Start, err = wholeDay(start, "raw_intervals.start", iv.PersonID); err != nil {
			return nil, err
		}
		if iv.Stop, err = wholeDay(stop, "raw_intervals.stop", iv.PersonID); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate raw_intervals")
	}

	logger.Debugw("loaded raw intervals", "intervals", len(out))
	return out, nil
}

// LoadWindows reads the study_windows table.
func LoadWindows(db *sql.DB) ([]timeline.Window, error) {
	rows, err := db.Query("SELECT person_id, entry, exit FROM study_windows")
	if err != nil {
		return nil, errors.Wrap(err, "query study_windows")
	}
	defer rows.Close()

	var out []timeline.Window
	for rows.Next() {
		var w timeline.Window
		var entry, exit float64
		if err := rows.Scan(&w.PersonID, &entry, &exit); err != nil {
			return nil, errors.NewSchemaError("study_windows holds a non-numeric column: %v", err)
		}
		if w.Entry, err = wholeDay(entry, "study_windows.entry", w.PersonID); err != nil {
			return nil, err
		}
		if w.Exit, err = wholeDay(exit, "study_windows.exit", w.PersonID); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate study_windows")
	}

	logger.Debugw("loaded study windows", "persons", len(out))
	return out, nil
}

// LoadEvents reads the events table. A missing kind defaults to the
// primary outcome.
func LoadEvents(db *sql.DB) ([]timeline.Event, error) {
	rows, err := db.Query("SELECT person_id, date, kind FROM events")
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var out []timeline.Event
	for rows.Next() {
		var ev timeline.Event
		var date float64
		var kind sql.NullInt64
		if err := rows.Scan(&ev.PersonID, &date, &kind); err != nil {
			return nil, errors.NewSchemaError("events holds a non-numeric column: %v", err)
		}
		if ev.Date, err = wholeDay(date, "events.date", ev.PersonID); err != nil {
			return nil, err
		}
		ev.Kind = 1
		if kind.Valid {
			ev.Kind = int(kind.Int64)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate events")
	}

	logger.Debugw("loaded events", "events", len(out))
	return out, nil
}

// wholeDay rejects any date that is not a whole day count.
func wholeDay(v float64, column, personID string) (timeline.Day, error) {
	if v != math.Trunc(v) {
		return 0, errors.NewSchemaError(
			"%s holds sub-day value %v for person %s; dates must be whole day counts", column, v, personID)
	}
	return timeline.Day(v), nil
}

// LoadTimeline reads one saved run's intervals back, for intersection
// with other runs.
func LoadTimeline(db *sql.DB, runID string) ([]timeline.Derived, error) {
	rows, err := db.Query(
		"SELECT person_id, start, stop, label, value, status, by_category, source_labels FROM timelines WHERE run_id = ?",
		runID)
	if err != nil {
		return nil, errors.Wrap(err, "query timelines")
	}
	defer rows.Close()

	var out []timeline.Derived
	for rows.Next() {
		var d timeline.Derived
		var byCategory, sourceLabels sql.NullString
		if err := rows.Scan(&d.PersonID, &d.Start, &d.Stop, &d.Label, &d.Value, &d.Status, &byCategory, &sourceLabels); err != nil {
			return nil, errors.Wrap(err, "scan timelines")
		}
		if byCategory.Valid {
			if err := json.Unmarshal([]byte(byCategory.String), &d.ByCategory); err != nil {
				return nil, errors.Wrapf(err, "decode by_category for person %s", d.PersonID)
			}
		}
		if sourceLabels.Valid {
			if err := json.Unmarshal([]byte(sourceLabels.String), &d.SourceLabels); err != nil {
				return nil, errors.Wrapf(err, "decode source_labels for person %s", d.PersonID)
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate timelines")
	}

	if len(out) == 0 {
		return nil, errors.NewDataQualityError("run %s has no saved timeline", runID)
	}
	return out, nil
}
