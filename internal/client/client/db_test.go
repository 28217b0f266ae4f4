package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "client.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "goose_db_version"))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "client.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestOpenStorage_SQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "state", "client.db")

	repo, closer, err := OpenStorage(ctx, dsn)
	require.NoError(t, err)
	require.IsType(t, &metadata.SQLiteRepository{}, repo)
	require.NoError(t, repo.Set(ctx, "refresh_token", []byte("r-1")))
	require.NoError(t, closer.Close())

	repo, closer, err = OpenStorage(ctx, dsn)
	require.NoError(t, err)
	defer closer.Close()

	v, err := repo.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.Equal(t, []byte("r-1"), v)
}

func TestOpenStorage_Memory(t *testing.T) {
	repo, closer, err := OpenStorage(context.Background(), MemoryDSN)
	require.NoError(t, err)
	require.IsType(t, &metadata.MemoryRepository{}, repo)
	require.NoError(t, closer.Close())
}
