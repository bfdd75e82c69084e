package entry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

// UpdateEntry replaces the tree of an existing entry and recomputes its
// derived columns. A tree without a page keeps the stored page.
func (s *Service) UpdateEntry(ctx context.Context, input UpdateEntryInput) (*WriteResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *WriteResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		old, err := s.entries.GetByID(txCtx, input.ID)
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}

		built, err := s.build(input.Data, lexicon.Source{Page: old.Page})
		if err != nil {
			return err
		}

		rec := built.Record
		rec.ID = old.ID
		if err := s.entries.Update(txCtx, rec, editorFromCtx(txCtx)); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}

		if old.SortKey != rec.SortKey {
			s.log.DebugContext(ctx, "sort key changed",
				slog.Int64("entry_id", rec.ID),
				slog.String("old", old.SortKey),
				slog.String("new", rec.SortKey),
			)
		}

		result = &WriteResult{Record: rec, Entry: built.Entry, Warnings: built.Warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "entry updated",
		slog.Int64("entry_id", result.Record.ID),
		slog.String("head", result.Record.Head),
		slog.Bool("complete", result.Record.IsComplete),
	)

	return result, nil
}
