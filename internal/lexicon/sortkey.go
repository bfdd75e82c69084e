package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Combining marks that carry tone in the romanisation.
const (
	markAcute      = '\u0301'
	markGrave      = '\u0300'
	markCircumflex = '\u0302'
	markMacron     = '\u0304'
	// markDotAboveRight distinguishes o͘ from o and is part of the spelling,
	// not the tone.
	markDotAboveRight = '\u0358'
	// nasalN marks nasalisation (aⁿ) and is also part of the spelling.
	nasalN = '\u207f'
)

var toneMarks = map[rune]byte{
	markAcute:      '2',
	markGrave:      '3',
	markCircumflex: '5',
	markMacron:     '7',
}

// syllable is the phonetic base of one hyphen-separated syllable and its tone
// digit.
type syllable struct {
	base string
	tone byte
}

// SortKey computes the dictionary ordering key of a headword:
//
//	<first syllable base>#<1 mono | 2 poly>#<bases joined by "-">#<tone digits>
//
// Plain byte comparison of keys gives the reader's expected order: by first
// syllable, monosyllables before compounds, then by the full spelling, then
// by tone. The key depends on head alone; a head with no syllables yields "".
func SortKey(head string) string {
	syls := syllables(head)
	if len(syls) == 0 {
		return ""
	}

	bases := make([]string, len(syls))
	tones := make([]byte, len(syls))
	for i, s := range syls {
		bases[i] = s.base
		tones[i] = s.tone
	}

	count := "1"
	if len(syls) > 1 {
		count = "2"
	}

	var b strings.Builder
	b.WriteString(bases[0])
	b.WriteByte('#')
	b.WriteString(count)
	b.WriteByte('#')
	b.WriteString(strings.Join(bases, "-"))
	b.WriteByte('#')
	b.Write(tones)
	return b.String()
}

func syllables(head string) []syllable {
	s := StripMarkers(head)
	if i := strings.IndexAny(s, "/| "); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(norm.NFD.String(s))

	var out []syllable
	for _, part := range strings.Split(s, "-") {
		if syl, ok := parseSyllable(part); ok {
			out = append(out, syl)
		}
	}
	return out
}

func parseSyllable(part string) (syllable, bool) {
	var (
		base strings.Builder
		tone byte
	)
	for _, r := range part {
		switch {
		case r == markDotAboveRight || r == nasalN:
			base.WriteRune(r)
		case toneMarks[r] != 0:
			if tone == 0 {
				tone = toneMarks[r]
			}
		case r >= '\u0300' && r <= '\u036f':
			// Other combining marks carry no ordering weight.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			base.WriteRune(r)
		}
	}
	if base.Len() == 0 {
		return syllable{}, false
	}
	if tone == 0 {
		tone = defaultTone(base.String())
	}
	return syllable{base: base.String(), tone: tone}, true
}

// defaultTone returns 4 for checked syllables (stop or glottal final) and 1
// otherwise.
func defaultTone(base string) byte {
	trimmed := strings.TrimRightFunc(base, isLiteralMarker)
	if trimmed != base && strings.HasSuffix(trimmed, "h") {
		return '4'
	}
	switch base[len(base)-1] {
	case 'p', 't', 'k', 'h':
		return '4'
	}
	return '1'
}

func isLiteralMarker(r rune) bool {
	return r == markDotAboveRight || r == nasalN
}
