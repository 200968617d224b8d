package models

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestColumnMismatchReport(t *testing.T) {
	db := openTestDB(t)

	t.Run("missing table is reported, not counted", func(t *testing.T) {
		var out bytes.Buffer
		total, err := GenerateColumnMismatchReport(db, &out)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Contains(t, out.String(), "Table does not exist yet")
	})

	require.NoError(t, Migrate(db))

	t.Run("migrated table matches the model", func(t *testing.T) {
		var out bytes.Buffer
		total, err := GenerateColumnMismatchReport(db, &out)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Contains(t, out.String(), "All columns are accounted for")
	})

	t.Run("extra column is flagged", func(t *testing.T) {
		require.NoError(t, db.Exec("ALTER TABLE projects ADD COLUMN legacy_tags text").Error)

		var out bytes.Buffer
		total, err := GenerateColumnMismatchReport(db, &out)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Contains(t, out.String(), "  - legacy_tags")
	})
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "zeta", "title", "alpha"}, []string{"id", "title"})
	assert.Equal(t, []string{"alpha", "zeta"}, got)
}
