package client

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/teamhub/internal/client/migrations"
	"github.com/dmitrijs2005/teamhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamhub/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// MemoryDSN selects process-local storage instead of an SQLite file.
const MemoryDSN = ":memory:"

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection avoids SQLITE_BUSY between the refresh path and
	// the session timer writing at the same time.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenStorage returns the durable key/value store for dsn together with a
// closer that releases it. MemoryDSN yields a MemoryRepository.
func OpenStorage(ctx context.Context, dsn string) (metadata.Repository, io.Closer, error) {
	if dsn == MemoryDSN {
		return metadata.NewMemoryRepository(), io.NopCloser(nil), nil
	}

	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, nil, fmt.Errorf("open storage %s: %w", dsn, err)
	}

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage %s: %w", dsn, err)
	}
	return metadata.NewSQLiteRepository(db), db, nil
}
