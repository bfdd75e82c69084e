package entry

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Tree paths searched by the field-scoped terms. strict mode keeps .**
// from returning duplicates.
const (
	pathEn   = "strict $.**.en"
	pathTw   = "strict $.**.tw"
	pathEtym = "strict $.**.etym"
)

// normalizeFilter applies defaults and clamps values.
func normalizeFilter(f domain.EntryFilter) domain.EntryFilter {
	f.SortBy = domain.SortField(f.SortBy).OrDefault().String()
	f.SortOrder = domain.SortOrder(f.SortOrder).OrDefault().String()

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// conditions translates the filter into WHERE predicates.
func conditions(f domain.EntryFilter) squirrel.And {
	where := squirrel.And{}

	if t := f.Search.Head; t != nil && *t != "" {
		where = append(where, headCondition(*t))
	}
	if t := f.Search.En; t != nil && *t != "" {
		where = append(where, treeCondition(pathEn, *t))
	}
	if t := f.Search.Tw; t != nil && *t != "" {
		where = append(where, treeCondition(pathTw, *t))
	}
	if t := f.Search.Etym; t != nil && *t != "" {
		where = append(where, treeCondition(pathEtym, *t))
	}
	if f.PartOfSpeech != nil && *f.PartOfSpeech != "" {
		where = append(where, squirrel.Expr(
			`EXISTS (SELECT 1 FROM jsonb_array_elements(entry_data::jsonb -> 'defs') AS g
			 WHERE g -> 'pos' @> jsonb_build_array(?::text))`,
			*f.PartOfSpeech,
		))
	}
	if f.IsComplete != nil {
		flag := 0
		if *f.IsComplete {
			flag = 1
		}
		where = append(where, squirrel.Eq{"is_complete": flag})
	}
	if f.Page != nil {
		where = append(where, squirrel.Eq{"page": *f.Page})
	}
	return where
}

// headCondition matches the term at the start of the head or right after
// one of the head boundaries, case-insensitively.
func headCondition(term string) squirrel.Sqlizer {
	escaped := escapeLike(term)
	or := squirrel.Or{squirrel.ILike{"head": escaped + "%"}}
	for _, b := range lexicon.HeadBoundaries {
		or = append(or, squirrel.ILike{"head": "%" + escapeLike(b) + escaped + "%"})
	}
	return or
}

// treeCondition matches the term anywhere inside the values found at path.
func treeCondition(path, term string) squirrel.Sqlizer {
	return squirrel.Expr(
		`EXISTS (SELECT 1 FROM jsonb_path_query(entry_data::jsonb, ?::jsonpath) AS v
		 WHERE v #>> '{}' ILIKE ?)`,
		path, "%"+escapeLike(term)+"%",
	)
}

func orderBy(f domain.EntryFilter) []string {
	return []string{f.SortBy + " " + f.SortOrder, "id " + f.SortOrder}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
