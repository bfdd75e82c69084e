package testhelper

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// UniqueSuffix returns a short unique string for non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedEntry inserts a minimal complete entry with the given head and
// returns the stored record.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, head string) domain.Record {
	t.Helper()
	ctx := context.Background()

	tree := domain.Entry{
		Head: head,
		Defs: []domain.PosGroup{{
			Pos:  []string{"n"},
			Defs: []domain.Sense{{En: "seeded " + head}},
		}},
	}
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("testhelper: SeedEntry marshal: %v", err)
	}

	rec := domain.Record{
		Head:       head,
		SortKey:    head,
		EntryData:  data,
		IsComplete: true,
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO entries (head, sort_key, entry_data, is_complete)
		 VALUES ($1, $2, $3, 1)
		 RETURNING id, created_at, updated_at`,
		rec.Head, rec.SortKey, string(rec.EntryData),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedEntry insert: %v", err)
	}

	return rec
}
