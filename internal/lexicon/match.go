package lexicon

import "strings"

// HeadBoundaries are the separators after which a headword search term may
// start matching: between syllables, between words, and between orthographic
// variants.
var HeadBoundaries = []string{"-", " ", "/", "|"}

// HeadMatches reports whether term matches head the way headword search does:
// head starts with term, or term appears right after one of HeadBoundaries.
// Matching is case-insensitive. An empty term matches everything.
func HeadMatches(head, term string) bool {
	head = strings.ToLower(head)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.HasPrefix(head, term) {
		return true
	}
	for _, sep := range HeadBoundaries {
		if strings.Contains(head, sep+term) {
			return true
		}
	}
	return false
}
