package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// MemorySQLitePath opens a private in-memory database.
const MemorySQLitePath = ":memory:"

// OpenSQLite opens the embedded database at path. The pool is pinned to one
// connection: SQLite admits a single writer, and an in-memory database only
// lives as long as its connection.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	if path == "" {
		path = "identity-registry.db"
	}
	if path != MemorySQLitePath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", pragma, err)
		}
	}

	logger.Info("opened sqlite store", zap.String("path", path))
	return db, nil
}
