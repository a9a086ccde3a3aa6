package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSQLiteAppliesSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		t.Fatalf("todos table missing: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty table, got %d rows", n)
	}

	if _, err := conn.ExecContext(ctx, `INSERT INTO todos (title) VALUES ('')`); err == nil {
		t.Fatalf("expected empty title to violate the check constraint")
	}
}

func TestOpenSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	conn, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := conn.ExecContext(ctx, `INSERT INTO todos (title) VALUES ('persist me')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	conn.Close()

	conn, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()

	var title string
	if err := conn.QueryRowContext(ctx, `SELECT title FROM todos`).Scan(&title); err != nil {
		t.Fatalf("select: %v", err)
	}
	if title != "persist me" {
		t.Fatalf("expected persisted title, got %q", title)
	}
}
