package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWithMigrations(t *testing.T) {
	t.Run("successfully opens database and runs migrations", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		conn, err := OpenWithMigrations(dbPath, nil)
		require.NoError(t, err)
		require.NotNil(t, conn)
		defer conn.Close()

		for _, table := range []string{
			"schema_migrations", "raw_intervals", "study_windows",
			"events", "timelines", "run_reports",
		} {
			var exists int
			err = conn.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
			).Scan(&exists)
			require.NoError(t, err)
			assert.Equal(t, 1, exists, "table %s should exist after migrations", table)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		conn, err := OpenWithMigrations(dbPath, nil)
		require.NoError(t, err)
		conn.Close()

		conn, err = OpenWithMigrations(dbPath, nil)
		require.NoError(t, err)
		defer conn.Close()

		var count int
		err = conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	conn, err := OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec("INSERT INTO study_windows (person_id, entry, exit) VALUES ('p1', 0, 100)")
	require.NoError(t, err)

	stats, err := Stats(conn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.StudyWindows)
	assert.Equal(t, int64(0), stats.RawIntervals)
}
