// Package entry implements the live editing path: entries created or
// updated through the API go through the same lexicon builder as the batch
// pipeline, so sort key and completeness are recomputed on every write.
package entry

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
	"github.com/heartmarshall/tjdict-backend/pkg/ctxutil"
)

type entryRepo interface {
	Create(ctx context.Context, rec *domain.Record, editorID *int64) error
	Update(ctx context.Context, rec *domain.Record, editorID *int64) error
	GetByID(ctx context.Context, id int64) (*domain.Record, error)
	Find(ctx context.Context, filter domain.EntryFilter) ([]*domain.Record, int, error)
	PageRange(ctx context.Context) (int, int, error)
}

type recordBuilder interface {
	Build(node *raw.Node, src lexicon.Source) (*lexicon.Built, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const (
	// MaxEntryBytes bounds the serialized tree accepted from the API.
	MaxEntryBytes = 256 << 10

	// MaxPageEntries bounds the by-page listing.
	MaxPageEntries = 200
)

// Service provides entry read and write operations.
type Service struct {
	entries entryRepo
	builder recordBuilder
	tx      txManager
	log     *slog.Logger
}

// NewService creates a new entry service.
func NewService(
	log *slog.Logger,
	entries entryRepo,
	builder recordBuilder,
	tx txManager,
) *Service {
	return &Service{
		entries: entries,
		builder: builder,
		tx:      tx,
		log:     log.With("service", "entry"),
	}
}

func editorFromCtx(ctx context.Context) *int64 {
	if id, ok := ctxutil.EditorIDFromCtx(ctx); ok {
		return &id
	}
	return nil
}
