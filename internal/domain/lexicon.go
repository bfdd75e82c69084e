package domain

// Entry is the canonical dictionary entry tree produced by the normalizer and
// stored (serialized) in a Record's entry_data column.
//
// Optional textual fields are pointers: absence is distinct from the empty
// string. Lists use omitempty; an empty list and an absent list are the same.
type Entry struct {
	Head       string     `json:"head"`
	HeadNumber *int       `json:"head_number,omitempty"`
	Page       *int       `json:"page,omitempty"`
	Etym       *string    `json:"etym,omitempty"`
	Defs       []PosGroup `json:"defs"`
}

// PosGroup groups senses sharing a part of speech.
type PosGroup struct {
	Pos  []string `json:"pos,omitempty"`
	Mw   *string  `json:"mw,omitempty"`
	Etym *string  `json:"etym,omitempty"`
	Defs []Sense  `json:"defs"`
}

// Sense is one meaning under a PosGroup. En is always present; "" means the
// gloss has not been translated yet.
type Sense struct {
	En          string   `json:"en"`
	Mw          *string  `json:"mw,omitempty"`
	Cat         *string  `json:"cat,omitempty"`
	Etym        *string  `json:"etym,omitempty"`
	Bound       *bool    `json:"bound,omitempty"`
	Dup         *bool    `json:"dup,omitempty"`
	TakesToneA2 *bool    `json:"takes_tone_a2,omitempty"`
	Alt         []string `json:"alt,omitempty"`
	Cf          []string `json:"cf,omitempty"`
	Det         *string  `json:"det,omitempty"`
	Ex          []Extra  `json:"ex,omitempty"`
	Drv         []Extra  `json:"drv,omitempty"`
	Idm         []Extra  `json:"idm,omitempty"`
}

// Extra is an example sentence, derivative, or idiom attached to a sense.
// All three share this shape and may nest up to MaxExtraDepth.
type Extra struct {
	Tw   string               `json:"tw"`
	En   []TranslationVariant `json:"en"`
	Mw   []string             `json:"mw,omitempty"`
	Cat  *string              `json:"cat,omitempty"`
	Etym *string              `json:"etym,omitempty"`
	Det  *string              `json:"det,omitempty"`
	Alt  []string             `json:"alt,omitempty"`
	Cf   []string             `json:"cf,omitempty"`
	Ex   []Extra              `json:"ex,omitempty"`
	Drv  []Extra              `json:"drv,omitempty"`
	Idm  []Extra              `json:"idm,omitempty"`
}

// TranslationVariant is one of several alternative glosses (a, b, c, ...)
// for the same source text. Ex is only allowed on variants of a top-level
// Extra.
type TranslationVariant struct {
	En   string   `json:"en"`
	Mw   []string `json:"mw,omitempty"`
	Cat  *string  `json:"cat,omitempty"`
	Etym *string  `json:"etym,omitempty"`
	Dup  *bool    `json:"dup,omitempty"`
	Alt  []string `json:"alt,omitempty"`
	Ex   []Extra  `json:"ex,omitempty"`
}

// MaxExtraDepth is the deepest nesting level an Extra may sit at. A
// sense-level Extra is depth 0; depth-MaxExtraDepth Extras are leaves.
const MaxExtraDepth = 2

// Children returns the nested extras of e in ex, drv, idm order.
func (e *Extra) Children() [][]Extra {
	return [][]Extra{e.Ex, e.Drv, e.Idm}
}

// Children returns the extras of s in ex, drv, idm order.
func (s *Sense) Children() [][]Extra {
	return [][]Extra{s.Ex, s.Drv, s.Idm}
}
