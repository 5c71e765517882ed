package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bar-feature-lab/internal/storage/migrations"
)

// setupTestDB opens a fresh SQLite file under t.TempDir and applies migrations.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err, "failed to open sqlite")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db.DB), "failed to apply migrations")

	return db
}
