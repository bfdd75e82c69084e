package entry

import "github.com/heartmarshall/tjdict-backend/internal/domain"

// WriteResult is returned by create and update.
type WriteResult struct {
	Record   *domain.Record
	Entry    *domain.Entry
	Warnings []domain.Warning
}

// ListResult holds one page of entries.
type ListResult struct {
	Records  []*domain.Record
	Total    int
	Page     int
	PageSize int
}

// PageResult holds every entry printed on one source page.
type PageResult struct {
	Records []*domain.Record
	Page    int
	MinPage int
	MaxPage int
}
