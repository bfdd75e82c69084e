package entry

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// ListEntries returns one page of entries matching the search query and
// filters, ordered by sort key unless asked otherwise.
func (s *Service) ListEntries(ctx context.Context, input ListEntriesInput) (*ListResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	page := input.Page
	if page == 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	filter := domain.EntryFilter{
		Search:       ParseSearch(input.Query),
		PartOfSpeech: input.PartOfSpeech,
		IsComplete:   input.IsComplete,
		SortBy:       input.SortBy,
		SortOrder:    strings.ToUpper(input.SortOrder),
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	}

	records, total, err := s.entries.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}

	return &ListResult{Records: records, Total: total, Page: page, PageSize: pageSize}, nil
}

// ListByPage returns the entries printed on one source page together with
// the page range available for navigation.
func (s *Service) ListByPage(ctx context.Context, page int, sortBy, sortOrder string) (*PageResult, error) {
	var errs []domain.FieldError
	if page < 1 {
		errs = append(errs, domain.FieldError{Field: "page", Message: "must be positive"})
	}
	if !validSortBy(sortBy) {
		errs = append(errs, domain.FieldError{Field: "sortBy", Message: "must be sort_key, head or updated_at"})
	}
	if !validSortOrder(sortOrder) {
		errs = append(errs, domain.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	records, _, err := s.entries.Find(ctx, domain.EntryFilter{
		Page:      &page,
		SortBy:    sortBy,
		SortOrder: strings.ToUpper(sortOrder),
		Limit:     MaxPageEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("find page entries: %w", err)
	}

	lo, hi, err := s.entries.PageRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("page range: %w", err)
	}
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = 1
	}

	return &PageResult{Records: records, Page: page, MinPage: lo, MaxPage: hi}, nil
}
