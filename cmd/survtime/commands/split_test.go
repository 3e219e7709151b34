package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpcopeland/survtime/config"
	"github.com/tpcopeland/survtime/db"
	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/storage"
	"github.com/tpcopeland/survtime/timeline"
)

func TestSplitStoredTruncatesSavedRun(t *testing.T) {
	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer conn.Close()

	saved := timeline.NewReport()
	ds := []timeline.Derived{
		{Interval: timeline.Interval{PersonID: "p1", Start: 0, Stop: 9, Label: 0}},
		{Interval: timeline.Interval{PersonID: "p1", Start: 10, Stop: 100, Label: 1}},
	}
	require.NoError(t, storage.SaveTimeline(conn, saved.RunID, ds))

	_, err = conn.Exec("INSERT INTO events (person_id, date, kind) VALUES ('p1', 50, 1)")
	require.NoError(t, err)

	report, out, err := splitStored(conn, config.Default(), saved.RunID)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, timeline.Day(50), out[1].Stop)
	assert.Equal(t, 1, out[1].Status)
	assert.Equal(t, int64(51), report.Summary().TotalDays)
}

func TestSplitStoredRequiresEvents(t *testing.T) {
	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer conn.Close()

	saved := timeline.NewReport()
	ds := []timeline.Derived{
		{Interval: timeline.Interval{PersonID: "p1", Start: 0, Stop: 9, Label: 0}},
	}
	require.NoError(t, storage.SaveTimeline(conn, saved.RunID, ds))

	_, _, err = splitStored(conn, config.Default(), saved.RunID)
	require.Error(t, err)
	assert.True(t, errors.IsDataQualityError(err))
}

func TestSplitStoredUnknownRun(t *testing.T) {
	conn, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = splitStored(conn, config.Default(), "no-such-run")
	require.Error(t, err)
	assert.True(t, errors.IsDataQualityError(err))
}
