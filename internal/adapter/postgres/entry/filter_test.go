package entry

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestNormalizeFilter_Defaults(t *testing.T) {
	t.Parallel()

	f := normalizeFilter(domain.EntryFilter{SortBy: "bogus", SortOrder: "sideways", Limit: 0, Offset: -3})
	assert.Equal(t, "sort_key", f.SortBy)
	assert.Equal(t, "ASC", f.SortOrder)
	assert.Equal(t, defaultLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)

	f = normalizeFilter(domain.EntryFilter{SortBy: "updated_at", SortOrder: "desc", Limit: 1000})
	assert.Equal(t, "updated_at", f.SortBy)
	assert.Equal(t, "DESC", f.SortOrder)
	assert.Equal(t, maxLimit, f.Limit)
	assert.Equal(t, []string{"updated_at DESC", "id DESC"}, orderBy(f))
}

func TestConditions_Empty(t *testing.T) {
	t.Parallel()

	where := conditions(domain.EntryFilter{Search: domain.SearchTerms{Head: strPtr("")}})
	assert.Empty(t, where)
}

func TestConditions_SQL(t *testing.T) {
	t.Parallel()

	complete := true
	page := 12
	where := conditions(domain.EntryFilter{
		Search: domain.SearchTerms{
			Head: strPtr("a_b"),
			En:   strPtr("eat"),
		},
		PartOfSpeech: strPtr("v"),
		IsComplete:   &complete,
		Page:         &page,
	})

	sql, args, err := squirrel.Select("id").From("entries").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "head ILIKE $1")
	assert.Contains(t, sql, "jsonb_path_query")
	assert.Contains(t, sql, "jsonb_build_array")
	assert.Contains(t, sql, "is_complete = ")
	assert.Contains(t, sql, "page = ")

	assert.Equal(t, `a\_b%`, args[0])
	assert.Contains(t, args, `%-a\_b%`)
	assert.Contains(t, args, `% a\_b%`)
	assert.Contains(t, args, pathEn)
	assert.Contains(t, args, "%eat%")
	assert.Contains(t, args, "v")
	assert.Contains(t, args, 1)
	assert.Contains(t, args, 12)
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
