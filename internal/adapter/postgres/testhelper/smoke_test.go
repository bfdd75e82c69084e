package testhelper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationsDir(t *testing.T) {
	if _, err := os.Stat(filepath.Join(MigrationsDir(), "00001_entries.sql")); err != nil {
		t.Fatalf("entries migration not found: %v", err)
	}
}

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	rec := SeedEntry(t, pool, "smoke-"+UniqueSuffix())

	var head string
	var complete int
	err := pool.QueryRow(context.Background(),
		`SELECT head, is_complete FROM entries WHERE id = $1`, rec.ID,
	).Scan(&head, &complete)
	if err != nil {
		t.Fatalf("expected entry in DB, got error: %v", err)
	}
	if head != rec.Head {
		t.Fatalf("expected head %q, got %q", rec.Head, head)
	}
	if complete != 1 {
		t.Fatalf("expected seeded entry to be complete, got %d", complete)
	}
}
