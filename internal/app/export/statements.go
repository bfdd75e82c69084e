package export

import (
	"strconv"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

// Table is the destination table of generated statements.
const Table = "entries"

var insertColumns = []string{"head", "head_number", "page", "sort_key", "entry_data", "is_complete", "source_file"}

// InsertStatements renders records as multi-row INSERT statements with at
// most rowsPerStatement rows each. Every statement ends with ";\n".
func InsertStatements(records []*domain.Record, rowsPerStatement int) []string {
	if rowsPerStatement <= 0 {
		rowsPerStatement = 1
	}

	prefix := "INSERT INTO " + Table + " (" + strings.Join(insertColumns, ", ") + ") VALUES\n"
	var out []string
	for i := 0; i < len(records); i += rowsPerStatement {
		end := min(i+rowsPerStatement, len(records))

		var b strings.Builder
		b.WriteString(prefix)
		for j, r := range records[i:end] {
			if j > 0 {
				b.WriteString(",\n")
			}
			writeRow(&b, r)
		}
		b.WriteString(";\n")
		out = append(out, b.String())
	}
	return out
}

func writeRow(b *strings.Builder, r *domain.Record) {
	b.WriteByte('(')
	b.WriteString(quote(r.Head))
	b.WriteString(", ")
	b.WriteString(intOrNull(r.HeadNumber))
	b.WriteString(", ")
	b.WriteString(intOrNull(r.Page))
	b.WriteString(", ")
	b.WriteString(quote(r.SortKey))
	b.WriteString(", ")
	b.WriteString(quote(string(r.EntryData)))
	b.WriteString(", ")
	b.WriteString(strconv.Itoa(r.CompleteFlag()))
	b.WriteString(", ")
	if r.SourceFile != nil {
		b.WriteString(quote(*r.SourceFile))
	} else {
		b.WriteString("NULL")
	}
	b.WriteByte(')')
}

// UpdateStatements renders one statement per record that rewrites the derived
// columns of the matching stored row, keyed by head and head number.
func UpdateStatements(records []*domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		var b strings.Builder
		b.WriteString("UPDATE " + Table + " SET sort_key = ")
		b.WriteString(quote(r.SortKey))
		b.WriteString(", is_complete = ")
		b.WriteString(strconv.Itoa(r.CompleteFlag()))
		b.WriteString(" WHERE head = ")
		b.WriteString(quote(r.Head))
		if r.HeadNumber != nil {
			b.WriteString(" AND head_number = ")
			b.WriteString(strconv.Itoa(*r.HeadNumber))
		} else {
			b.WriteString(" AND head_number IS NULL")
		}
		b.WriteString(";\n")
		out = append(out, b.String())
	}
	return out
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func intOrNull(v *int) string {
	if v == nil {
		return "NULL"
	}
	return strconv.Itoa(*v)
}
