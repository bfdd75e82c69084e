// Package sqlite replays exported SQL chunk files into a SQLite database,
// the local stand-in for the edge database the bulk files are built for.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a SQLite handle holding the entries table.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path and ensures the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

// Count returns the number of rows in entries.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// SortKey returns the stored sort key of (head, headNumber).
func (db *DB) SortKey(ctx context.Context, head string, headNumber *int) (string, error) {
	number := 0
	if headNumber != nil {
		number = *headNumber
	}
	var key string
	err := db.QueryRowContext(ctx,
		"SELECT sort_key FROM entries WHERE head = ? AND COALESCE(head_number, 0) = ?",
		head, number,
	).Scan(&key)
	if err != nil {
		return "", fmt.Errorf("sort key of %s: %w", head, err)
	}
	return key, nil
}
