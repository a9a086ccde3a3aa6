package db

import (
	"context"
	"database/sql"
	"fmt"

	"todo_app/internal/logger"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors internal/migrations for the SQLite backend.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL CHECK (title <> ''),
	completed BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// OpenSQLite opens the database at path (":memory:" for a throwaway store)
// and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one connection: a single writer, and every caller shares the same in-memory db
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("database connected", "driver", "sqlite", "path", path)
	return conn, nil
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logger.Error("error closing db", "error", err)
	}
}
