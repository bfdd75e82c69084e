package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/tjdict-backend/internal/app/export"
	"github.com/heartmarshall/tjdict-backend/internal/app/ingest"
	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "check YAML source documents or an exported entries JSON file",
	Description: strings.Join([]string{
		"YAML documents are run through the same normalizer as ingest.",
		"A .json file is read as an export and every entry_data is checked",
		"against the entry schema and for a stale sort_key.",
	}, "\n"),
	ArgsUsage: "FILE...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "warnings",
			Aliases: []string{"w"},
			Usage:   "also list non-fatal warnings",
		},
	},
	Action: validateAction,
}

// problem is one row of validate output.
type problem struct {
	file   string
	index  int
	head   string
	kind   string
	detail string
}

func validateAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: validate needs at least one file", ErrUsage)
	}

	schema, err := lexicon.NewSchemaValidator()
	if err != nil {
		return fmt.Errorf("load entry schema: %w", err)
	}
	builder := lexicon.NewBuilder(schema)

	var (
		problems []problem
		entries  int
	)
	seen := make(map[string]string)
	rejected := make(map[string]bool)
	for _, path := range c.Args().Slice() {
		var (
			ps  []problem
			n   int
			err error
		)
		if strings.EqualFold(filepath.Ext(path), ".json") {
			ps, n, err = validateExport(schema, path)
		} else {
			ps, n, err = validateDocument(builder, path, seen, c.Bool("warnings"))
		}
		if err != nil {
			return err
		}
		entries += n
		for _, p := range ps {
			if p.kind != "warning" {
				rejected[fmt.Sprintf("%s#%d", p.file, p.index)] = true
			}
		}
		problems = append(problems, ps...)
	}

	if len(problems) > 0 {
		tbl := newTable(c.App.Writer, "File", "Index", "Head", "Kind", "Detail")
		for _, p := range problems {
			tbl.AddRow(p.file, p.index, p.head, p.kind, p.detail)
		}
		tbl.Print()
		fmt.Fprintln(c.App.Writer)
	}
	fmt.Fprintf(c.App.Writer, "%d entries checked, %d rejected\n", entries, len(rejected))

	if len(rejected) > 0 {
		return fmt.Errorf("%w: %d entries rejected", ErrInvalidData, len(rejected))
	}
	return nil
}

func validateDocument(builder *lexicon.Builder, path string, seen map[string]string, warnings bool) ([]problem, int, error) {
	ref := ingest.RefForFile(path)
	doc, err := ingest.LoadDocument(ref)
	if err != nil {
		return nil, 0, err
	}

	var out []problem
	for i, node := range doc.Entries {
		built, err := builder.Build(node, lexicon.Source{File: ref.Name, Index: i, Page: ref.Page})
		if err != nil {
			out = append(out, failureProblems(ref.Name, i, err)...)
			continue
		}

		rec := built.Record
		key := fmt.Sprintf("%s#%s", rec.Head, optInt(rec.HeadNumber))
		if first, dup := seen[key]; dup {
			out = append(out, problem{
				file: ref.Name, index: i, head: rec.Head,
				kind:   string(domain.FailureDuplicateEntry),
				detail: "already defined in " + first,
			})
			continue
		}
		seen[key] = ref.Name

		if warnings {
			for _, w := range built.Warnings {
				out = append(out, problem{
					file: ref.Name, index: i, head: rec.Head,
					kind:   "warning",
					detail: fmt.Sprintf("%s %s: %s", w.Kind, w.Path, w.Message),
				})
			}
		}
	}
	return out, len(doc.Entries), nil
}

func failureProblems(file string, index int, err error) []problem {
	var f *domain.EntryFailure
	if !errors.As(err, &f) {
		return []problem{{file: file, index: index, kind: string(domain.FailureMalformedEntry), detail: err.Error()}}
	}
	if len(f.Violations) == 0 {
		detail := f.Error()
		if f.Err != nil {
			detail = f.Err.Error()
		}
		return []problem{{file: file, index: index, head: f.Head, kind: string(f.Kind), detail: detail}}
	}

	out := make([]problem, 0, len(f.Violations))
	for _, v := range f.Violations {
		out = append(out, problem{
			file: file, index: index, head: f.Head,
			kind:   string(f.Kind),
			detail: v.Field + ": " + v.Message,
		})
	}
	return out
}

func validateExport(schema *lexicon.SchemaValidator, path string) ([]problem, int, error) {
	records, err := export.ReadJSON(path)
	if err != nil {
		return nil, 0, err
	}
	name := filepath.Base(path)

	var out []problem
	for i, rec := range records {
		violations, err := schema.ValidateJSON(rec.EntryData)
		if err != nil {
			out = append(out, problem{file: name, index: i, head: rec.Head,
				kind: string(domain.FailureMalformedEntry), detail: err.Error()})
			continue
		}
		for _, v := range violations {
			out = append(out, problem{file: name, index: i, head: rec.Head,
				kind: string(domain.FailureSchemaViolation), detail: v.Field + ": " + v.Message})
		}
		if want := lexicon.SortKey(rec.Head); rec.SortKey != want {
			out = append(out, problem{file: name, index: i, head: rec.Head,
				kind: "stale_sort_key", detail: fmt.Sprintf("have %q, want %q", rec.SortKey, want)})
		}
	}
	return out, len(records), nil
}
