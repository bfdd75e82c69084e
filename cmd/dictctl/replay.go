package main

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/tjdict-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/tjdict-backend/internal/app"
	"github.com/heartmarshall/tjdict-backend/internal/config"
)

var replayCommand = &cli.Command{
	Name:  "replay",
	Usage: "load exported SQL chunks into a local SQLite database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database `FILE` (created if missing)",
			Value: "dictionary.db",
		},
		&cli.StringFlag{
			Name:  "chunks",
			Usage: "directory holding the entries-*.sql chunks",
			Value: filepath.Join("data", "out", "sql-chunks"),
		},
		&cli.StringSliceFlag{
			Name:  "then",
			Usage: "extra SQL `FILE` applied after the chunks, e.g. the update script",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: "warn",
		},
	},
	Action: replayAction,
}

func replayAction(c *cli.Context) error {
	logger := app.NewLogger(config.LogConfig{Level: c.String("log-level"), Format: "text"}, "dictctl")

	db, err := sqlite.Open(c.Context, c.String("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	replayer := sqlite.NewReplayer(db, logger)
	result, err := replayer.ReplayDir(c.Context, c.String("chunks"))
	if err != nil {
		return err
	}
	if extra := c.StringSlice("then"); len(extra) > 0 {
		more, err := replayer.ReplayFiles(c.Context, extra)
		if err != nil {
			return err
		}
		result.Applied = append(result.Applied, more.Applied...)
		for name, ferr := range more.Failed {
			result.Failed[name] = ferr
		}
	}

	count, err := db.Count(c.Context)
	if err != nil {
		return err
	}

	tbl := newTable(c.App.Writer, "File", "Status", "Error")
	for _, name := range result.Applied {
		tbl.AddRow(name, "ok", "")
	}
	for _, name := range slices.Sorted(maps.Keys(result.Failed)) {
		tbl.AddRow(name, "failed", result.Failed[name].Error())
	}
	tbl.Print()
	fmt.Fprintf(c.App.Writer, "\n%d applied, %d failed, %d entries in %s\n",
		len(result.Applied), len(result.Failed), count, db.Path())

	if result.HasErrors() {
		return fmt.Errorf("%w: %d files failed", ErrInvalidData, len(result.Failed))
	}
	return nil
}
