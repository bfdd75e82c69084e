// Package entry implements the dictionary entry repository using PostgreSQL.
// Entries are stored flat: the canonical tree lives in entry_data as JSON
// next to the derived head, head_number, sort_key and is_complete columns.
package entry

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/tjdict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

const entity = "entry"

// Repo provides entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sq   squirrel.StatementBuilderType
}

// New creates a new entry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var columns = []string{
	"id", "head", "head_number", "page", "sort_key", "entry_data", "is_complete",
	"source_file", "created_by", "updated_by", "created_at", "updated_at",
}

const insertSQL = `
INSERT INTO entries (head, head_number, page, sort_key, entry_data, is_complete, source_file, created_by, updated_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
RETURNING id, created_at, updated_at`

const updateSQL = `
UPDATE entries
SET head = $2, head_number = $3, page = $4, sort_key = $5, entry_data = $6,
    is_complete = $7, updated_by = $8, updated_at = now()
WHERE id = $1
RETURNING source_file, created_by, created_at, updated_at`

const upsertSQL = `
INSERT INTO entries (head, head_number, page, sort_key, entry_data, is_complete, source_file)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (head, COALESCE(head_number, 0)) DO UPDATE
SET page = EXCLUDED.page, sort_key = EXCLUDED.sort_key, entry_data = EXCLUDED.entry_data,
    is_complete = EXCLUDED.is_complete, source_file = EXCLUDED.source_file, updated_at = now()`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts rec and fills its ID and timestamps.
// A second entry with the same (head, head_number) yields ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, rec *domain.Record, editorID *int64) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	err := q.QueryRow(ctx, insertSQL,
		rec.Head, rec.HeadNumber, rec.Page, rec.SortKey, string(rec.EntryData),
		rec.CompleteFlag(), rec.SourceFile, editorID,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, entity, 0)
	}

	rec.CreatedBy = editorID
	rec.UpdatedBy = editorID
	return nil
}

// Update replaces every derived column of the entry rec.ID.
func (r *Repo) Update(ctx context.Context, rec *domain.Record, editorID *int64) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	err := q.QueryRow(ctx, updateSQL,
		rec.ID, rec.Head, rec.HeadNumber, rec.Page, rec.SortKey, string(rec.EntryData),
		rec.CompleteFlag(), editorID,
	).Scan(&rec.SourceFile, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return postgres.MapError(err, entity, rec.ID)
	}

	rec.UpdatedBy = editorID
	return nil
}

// BulkUpsert writes records in one pgx.Batch, replacing existing rows with
// the same (head, head_number). Returns the number of affected rows.
func (r *Repo) BulkUpsert(ctx context.Context, records []*domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertSQL,
			rec.Head, rec.HeadNumber, rec.Page, rec.SortKey, string(rec.EntryData),
			rec.CompleteFlag(), rec.SourceFile,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var affected int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("batch exec: %w", postgres.MapError(err, entity, 0))
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns the entry with the given id or ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	query, args, err := r.sq.Select(columns...).From("entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rec, err := scanRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return rec, nil
}

// GetByHead returns the entry keyed by (head, headNumber) or ErrNotFound.
func (r *Repo) GetByHead(ctx context.Context, head string, headNumber *int) (*domain.Record, error) {
	number := 0
	if headNumber != nil {
		number = *headNumber
	}

	query, args, err := r.sq.Select(columns...).From("entries").
		Where(squirrel.Eq{"head": head}).
		Where(squirrel.Expr("COALESCE(head_number, 0) = ?", number)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rec, err := scanRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, 0)
	}
	return rec, nil
}

// Find returns one page of entries matching the filter together with the
// total number of matches.
func (r *Repo) Find(ctx context.Context, filter domain.EntryFilter) ([]*domain.Record, int, error) {
	f := normalizeFilter(filter)
	where := conditions(f)
	q := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := r.sq.Select("count(*)").From("entries").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, 0)
	}
	if total == 0 {
		return []*domain.Record{}, 0, nil
	}

	listSQL, listArgs, err := r.sq.Select(columns...).From("entries").
		Where(where).
		OrderBy(orderBy(f)...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, postgres.MapError(err, entity, 0)
	}
	defer rows.Close()

	records := make([]*domain.Record, 0, f.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, postgres.MapError(err, entity, 0)
	}

	return records, total, nil
}

// PageRange returns the lowest and highest source page that has entries.
// Both are zero when no entry carries a page.
func (r *Repo) PageRange(ctx context.Context) (int, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var lo, hi *int
	err := q.QueryRow(ctx, `SELECT MIN(page), MAX(page) FROM entries WHERE page IS NOT NULL`).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, postgres.MapError(err, entity, 0)
	}
	if lo == nil || hi == nil {
		return 0, 0, nil
	}
	return *lo, *hi, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		rec      domain.Record
		data     string
		complete int16
	)
	err := row.Scan(
		&rec.ID, &rec.Head, &rec.HeadNumber, &rec.Page, &rec.SortKey, &data, &complete,
		&rec.SourceFile, &rec.CreatedBy, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.EntryData = []byte(data)
	rec.IsComplete = complete != 0
	return &rec, nil
}
