package domain

import "strings"

// SortField names a column entry listings can be ordered by.
type SortField string

const (
	SortBySortKey   SortField = "sort_key"
	SortByHead      SortField = "head"
	SortByUpdatedAt SortField = "updated_at"
)

func (f SortField) String() string { return string(f) }

// IsValid reports whether f is a known field. The empty value selects the
// default ordering and is accepted.
func (f SortField) IsValid() bool {
	switch f {
	case "", SortBySortKey, SortByHead, SortByUpdatedAt:
		return true
	}
	return false
}

// OrDefault returns f, or SortBySortKey when f is empty or unknown.
func (f SortField) OrDefault() SortField {
	if f == "" || !f.IsValid() {
		return SortBySortKey
	}
	return f
}

// SortOrder is the direction of a listing. Matching is case-insensitive.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

func (o SortOrder) String() string { return string(o) }

// IsValid reports whether o is asc, desc or empty.
func (o SortOrder) IsValid() bool {
	switch SortOrder(strings.ToUpper(string(o))) {
	case "", SortAsc, SortDesc:
		return true
	}
	return false
}

// OrDefault returns the canonical upper-case order, SortAsc for anything
// other than desc.
func (o SortOrder) OrDefault() SortOrder {
	if SortOrder(strings.ToUpper(string(o))) == SortDesc {
		return SortDesc
	}
	return SortAsc
}
