package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

var sortKeyCommand = &cli.Command{
	Name:      "sortkey",
	Usage:     "print the sort key of each headword",
	ArgsUsage: "HEAD...",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: sortkey needs at least one headword", ErrUsage)
		}

		tbl := newTable(c.App.Writer, "Head", "Number", "Sort key")
		for _, arg := range c.Args().Slice() {
			h := lexicon.ParseHeadword(arg)
			tbl.AddRow(h.Clean, optInt(h.Number), lexicon.SortKey(h.Clean))
		}
		tbl.Print()
		return nil
	},
}

var headwordCommand = &cli.Command{
	Name:      "headword",
	Usage:     "show how raw headwords split into head and disambiguation number",
	ArgsUsage: "RAW...",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("%w: headword needs at least one argument", ErrUsage)
		}

		tbl := newTable(c.App.Writer, "Raw", "Head", "Number", "Ambiguous")
		for _, arg := range c.Args().Slice() {
			h := lexicon.ParseHeadword(arg)
			tbl.AddRow(arg, h.Clean, optInt(h.Number), h.Ambiguous)
		}
		tbl.Print()
		return nil
	},
}
