package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon/raw"
)

// CreateEntry normalizes the submitted tree, derives sort key and
// completeness, and stores the new entry.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (*WriteResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	built, err := s.build(input.Data, lexicon.Source{})
	if err != nil {
		return nil, err
	}

	rec := built.Record
	if err := s.entries.Create(ctx, rec, editorFromCtx(ctx)); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.log.InfoContext(ctx, "entry created",
		slog.Int64("entry_id", rec.ID),
		slog.String("head", rec.Head),
		slog.Bool("complete", rec.IsComplete),
		slog.Int("warnings", len(built.Warnings)),
	)

	return &WriteResult{Record: rec, Entry: built.Entry, Warnings: built.Warnings}, nil
}

// build decodes data and runs it through the builder. Entry failures come
// back as validation errors carrying the offending paths.
func (s *Service) build(data []byte, src lexicon.Source) (*lexicon.Built, error) {
	node, err := raw.DecodeJSON(data)
	if err != nil {
		return nil, domain.NewValidationError("entry_data", err.Error())
	}

	built, err := s.builder.Build(node, src)
	if err != nil {
		return nil, asValidation(err)
	}
	return built, nil
}

func asValidation(err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return err
	}

	msg := err.Error()
	var failure *domain.EntryFailure
	if errors.As(err, &failure) && failure.Err != nil {
		msg = failure.Err.Error()
	}
	return fmt.Errorf("%w: %w", err, domain.NewValidationError("entry_data", msg))
}
