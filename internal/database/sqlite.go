package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLite is the single-file store used for local runs and tests.
type SQLite struct {
	DB *sqlx.DB
}

// OpenSQLite opens (or creates) the database at path and enables foreign keys.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// One connection keeps PRAGMAs in force and an in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	slog.Info("database connected", "driver", "sqlite", "path", path)
	return &SQLite{DB: db}, nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("sqlite database is not initialized")
	}

	if _, err := s.DB.ExecContext(ctx, sqliteInitialSQL); err != nil {
		return fmt.Errorf("apply initial migration: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}

func (s *SQLite) Health(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLite) Close() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
}
