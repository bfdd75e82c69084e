package entry

import (
	"encoding/json"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// CreateEntryInput carries a raw entry tree as sent by the editor.
type CreateEntryInput struct {
	Data json.RawMessage
}

// Validate checks all fields and collects all errors.
func (i CreateEntryInput) Validate() error {
	if errs := validateData(i.Data); len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateEntryInput replaces the tree of an existing entry.
type UpdateEntryInput struct {
	ID   int64
	Data json.RawMessage
}

// Validate checks all fields and collects all errors.
func (i UpdateEntryInput) Validate() error {
	var errs []domain.FieldError
	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	errs = append(errs, validateData(i.Data)...)
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateData(data json.RawMessage) []domain.FieldError {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		return []domain.FieldError{{Field: "entry_data", Message: "required"}}
	case len(data) > MaxEntryBytes:
		return []domain.FieldError{{Field: "entry_data", Message: "too large"}}
	case !json.Valid(data):
		return []domain.FieldError{{Field: "entry_data", Message: "invalid JSON"}}
	}
	return nil
}

// ListEntriesInput holds the listing parameters.
type ListEntriesInput struct {
	Query        string
	PartOfSpeech *string
	IsComplete   *bool
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Validate checks all fields and collects all errors.
func (i ListEntriesInput) Validate() error {
	var errs []domain.FieldError

	if i.Page < 0 {
		errs = append(errs, domain.FieldError{Field: "page", Message: "must be positive"})
	}
	if i.PageSize < 0 || i.PageSize > maxPageSize {
		errs = append(errs, domain.FieldError{Field: "pageSize", Message: "must be between 1 and 200"})
	}
	if !validSortBy(i.SortBy) {
		errs = append(errs, domain.FieldError{Field: "sortBy", Message: "must be sort_key, head or updated_at"})
	}
	if !validSortOrder(i.SortOrder) {
		errs = append(errs, domain.FieldError{Field: "sortOrder", Message: "must be asc or desc"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validSortBy(s string) bool {
	return domain.SortField(s).IsValid()
}

func validSortOrder(s string) bool {
	return domain.SortOrder(s).IsValid()
}
