package entry

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// ParseSearch splits a query such as "chia̍h en:eat tw:食" into field-scoped
// terms. Keys are head, en, tw and etym (case-insensitive); text outside any
// recognized key:value pair searches the headword and is appended to an
// explicit head: term.
func ParseSearch(query string) domain.SearchTerms {
	var terms domain.SearchTerms
	query = strings.TrimSpace(query)
	if query == "" {
		return terms
	}

	var (
		unmatched []string
		last      int
	)
	for _, tok := range tokenize(query) {
		key, value, ok := strings.Cut(tok.text, ":")
		if ok && value != "" && isSearchKey(key) {
			if seg := strings.TrimSpace(query[last:tok.start]); seg != "" {
				unmatched = append(unmatched, seg)
			}
			setTerm(&terms, strings.ToLower(key), strings.TrimSpace(query[tok.start+len(key)+1:tok.end]))
			last = tok.end
		}
	}
	if seg := strings.TrimSpace(query[last:]); seg != "" {
		unmatched = append(unmatched, seg)
	}

	if len(unmatched) > 0 {
		text := strings.Join(unmatched, " ")
		if terms.Head != nil {
			text = *terms.Head + " " + text
		}
		terms.Head = &text
	}
	return terms
}

type span struct {
	text       string
	start, end int
}

// tokenize groups the query into key:value spans. A span starts at a
// word:something token and extends over the following words that are not
// themselves key:value tokens; other words become single-word spans.
func tokenize(query string) []span {
	var words []span
	for i := 0; i < len(query); {
		for i < len(query) && isSpace(query[i]) {
			i++
		}
		start := i
		for i < len(query) && !isSpace(query[i]) {
			i++
		}
		if i > start {
			words = append(words, span{text: query[start:i], start: start, end: i})
		}
	}

	var spans []span
	for k := 0; k < len(words); k++ {
		w := words[k]
		if !looksKeyed(w.text) {
			spans = append(spans, w)
			continue
		}
		end := w.end
		for k+1 < len(words) && !strings.Contains(words[k+1].text, ":") {
			k++
			end = words[k].end
		}
		spans = append(spans, span{text: query[w.start:end], start: w.start, end: end})
	}
	return spans
}

func looksKeyed(word string) bool {
	key, value, ok := strings.Cut(word, ":")
	return ok && key != "" && value != "" && !strings.Contains(value, ":") && wordRe.MatchString(key)
}

var wordRe = regexp.MustCompile(`^\w+$`)

func isSearchKey(key string) bool {
	switch strings.ToLower(key) {
	case "head", "en", "tw", "etym":
		return true
	}
	return false
}

func setTerm(t *domain.SearchTerms, key, value string) {
	switch key {
	case "head":
		t.Head = &value
	case "en":
		t.En = &value
	case "tw":
		t.Tw = &value
	case "etym":
		t.Etym = &value
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
