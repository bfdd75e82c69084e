// Package ingest runs the batch pipeline: source documents are normalized
// into records, exported to bulk files, and optionally loaded into the
// database.
package ingest

import (
	"context"

	"github.com/heartmarshall/tjdict-backend/internal/app/export"
	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
)

// RecordBuilder turns one raw entry into a record. Implemented by
// lexicon.Builder.
type RecordBuilder interface {
	Build(node *raw.Node, src lexicon.Source) (*lexicon.Built, error)
}

// Exporter writes the bulk output files. Implemented by export.Exporter.
type Exporter interface {
	Export(ctx context.Context, records []*domain.Record) (*export.Summary, error)
}

// EntryBulkRepo defines the batch repository contract consumed by the
// pipeline. Implemented by entry.Repo.
type EntryBulkRepo interface {
	// BulkUpsert inserts records, replacing rows with the same
	// (head, head_number). Returns the number of rows written.
	BulkUpsert(ctx context.Context, records []*domain.Record) (int, error)
}
