package domain

// SearchTerms holds field-scoped search terms parsed from a user query.
// Head matches the headword at a word boundary; the others match anywhere
// inside the serialized entry tree.
type SearchTerms struct {
	Head *string
	En   *string
	Tw   *string
	Etym *string
}

// IsEmpty reports whether no term is set.
func (s SearchTerms) IsEmpty() bool {
	return s.Head == nil && s.En == nil && s.Tw == nil && s.Etym == nil
}

// EntryFilter contains filtering/pagination parameters for entry listings.
type EntryFilter struct {
	Search       SearchTerms
	PartOfSpeech *string
	IsComplete   *bool
	// Page restricts the listing to entries from one source page.
	Page      *int
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}
