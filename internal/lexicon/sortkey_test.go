package lexicon

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		head string
		want string
	}{
		{name: "plain open syllable", head: "a", want: "a#1#a#1"},
		{name: "acute", head: "á", want: "a#1#a#2"},
		{name: "grave", head: "kàu", want: "kau#1#kau#3"},
		{name: "circumflex", head: "lâng", want: "lang#1#lang#5"},
		{name: "macron", head: "tōa", want: "toa#1#toa#7"},
		{name: "checked h final", head: "chiah", want: "chiah#1#chiah#4"},
		{name: "checked k final", head: "pak", want: "pak#1#pak#4"},
		{name: "h plus nasal marker", head: "hahⁿ", want: "hahⁿ#1#hahⁿ#4"},
		{name: "dot above right kept", head: "o͘", want: "o͘#1#o͘#1"},
		{name: "other combining mark dropped", head: "sio̍k", want: "siok#1#siok#4"},
		{name: "compound", head: "tōa-lâng", want: "toa#2#toa-lang#75"},
		{name: "uppercase", head: "Tâi-oân", want: "tai#2#tai-oan#55"},
		{name: "disambiguation stripped", head: "chiah (1)", want: "chiah#1#chiah#4"},
		{name: "superscript stripped", head: "·a¹", want: "a#1#a#1"},
		{name: "first variant only slash", head: "chiah/chia", want: "chiah#1#chiah#4"},
		{name: "first variant only space", head: "tōa lâng", want: "toa#1#toa#7"},
		{name: "empty syllable skipped", head: "a--b", want: "a#2#a-b#11"},
		{name: "empty", head: "", want: ""},
		{name: "marker only", head: "(1)", want: ""},
		{name: "punctuation only", head: "·", want: ""},
		{name: "hyphen only", head: "-", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SortKey(tt.head))
		})
	}
}

func TestSortKey_Pure(t *testing.T) {
	t.Parallel()

	heads := []string{"a", "tōa-lâng", "chiah (1)", "o͘-á", "", "hahⁿ"}
	for _, h := range heads {
		assert.Equal(t, SortKey(h), SortKey(h), "head %q", h)
	}
}

func TestSortKey_Precomposed(t *testing.T) {
	t.Parallel()

	// "lâng" written with a precomposed â and with a combining circumflex.
	assert.Equal(t, SortKey("lâng"), SortKey("lâng"))
}

func TestSortKey_DictionaryOrder(t *testing.T) {
	t.Parallel()

	want := []string{"a", "á", "à", "â", "ā", "a-bô", "ah", "ba", "bá", "ba-ba"}

	got := []string{"ba-ba", "ah", "ā", "a-bô", "bá", "a", "â", "ba", "à", "á"}
	sort.SliceStable(got, func(i, j int) bool { return SortKey(got[i]) < SortKey(got[j]) })

	assert.Equal(t, want, got)
}
