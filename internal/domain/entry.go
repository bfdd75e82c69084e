package domain

import (
	"encoding/json"
	"time"
)

// Record is the flat, queryable row derived from one canonical Entry.
// SortKey and IsComplete are always recomputed from the tree on write.
type Record struct {
	ID         int64
	Head       string
	HeadNumber *int
	Page       *int
	SortKey    string
	EntryData  json.RawMessage
	IsComplete bool
	SourceFile *string
	CreatedBy  *int64
	UpdatedBy  *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CompleteFlag returns IsComplete as the 0/1 integer used by the storage
// schema and the bulk export.
func (r *Record) CompleteFlag() int {
	if r.IsComplete {
		return 1
	}
	return 0
}

// Tree decodes EntryData back into a canonical Entry.
func (r *Record) Tree() (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(r.EntryData, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
