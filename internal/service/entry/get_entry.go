package entry

import (
	"context"
	"fmt"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// GetEntry returns one entry by id.
func (s *Service) GetEntry(ctx context.Context, id int64) (*domain.Record, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}

	rec, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return rec, nil
}
