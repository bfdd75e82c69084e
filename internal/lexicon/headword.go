package lexicon

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	superscriptRunRe = regexp.MustCompile(`[⁰¹²³⁴⁵⁶⁷⁸⁹]+`)
	parenNumberRe    = regexp.MustCompile(`\s*\((\d+)\)`)

	superscriptToASCII = strings.NewReplacer(
		"⁰", "0", "¹", "1", "²", "2", "³", "3", "⁴", "4",
		"⁵", "5", "⁶", "6", "⁷", "7", "⁸", "8", "⁹", "9",
	)
)

// Headword is the result of splitting a raw headword into its lookup form and
// its optional disambiguation number.
type Headword struct {
	Clean  string
	Number *int
	// Ambiguous is set when the raw headword carried more than one
	// disambiguation marker. Only the first marker's number is used.
	Ambiguous bool
}

// ParseHeadword extracts a disambiguation number from raw. A run of
// superscript digits takes precedence over a parenthesised "(<digits>)"
// marker; in both cases only the first occurrence counts. Malformed markers
// (zero, overflow) yield no number but are still removed from Clean.
func ParseHeadword(raw string) Headword {
	if loc := superscriptRunRe.FindStringIndex(raw); loc != nil {
		h := Headword{Clean: raw[:loc[0]] + raw[loc[1]:]}
		h.Number = positiveInt(superscriptToASCII.Replace(raw[loc[0]:loc[1]]))
		return h.settle()
	}

	if m := parenNumberRe.FindStringSubmatchIndex(raw); m != nil {
		h := Headword{Clean: strings.TrimSpace(raw[:m[0]] + raw[m[1]:])}
		h.Number = positiveInt(raw[m[2]:m[3]])
		return h.settle()
	}

	return Headword{Clean: raw}
}

// settle flags and strips any markers left after the first one was consumed,
// so Clean never carries a marker.
func (h Headword) settle() Headword {
	if HasMarker(h.Clean) {
		h.Ambiguous = true
		h.Clean = StripMarkers(h.Clean)
	}
	return h
}

// HasMarker reports whether s contains a superscript-digit run or a
// parenthesised number.
func HasMarker(s string) bool {
	return superscriptRunRe.MatchString(s) || parenNumberRe.MatchString(s)
}

// StripMarkers removes every disambiguation marker from s and trims it.
func StripMarkers(s string) string {
	s = superscriptRunRe.ReplaceAllString(s, "")
	s = parenNumberRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func positiveInt(digits string) *int {
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
