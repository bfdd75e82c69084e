package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/tjdict-backend/internal/app"
)

const (
	// ExitCodeSuccess is the exit code for a successful run.
	ExitCodeSuccess int = iota

	// ExitCodeFailure is the exit code when a command fails or finds
	// invalid data.
	ExitCodeFailure
)

// ErrDictctl is a parent error for all command errors.
var ErrDictctl = errors.New("dictctl")

// ErrUsage is returned when arguments are missing.
var ErrUsage = fmt.Errorf("%w: usage", ErrDictctl)

// ErrInvalidData is returned when validate or replay found bad input.
var ErrInvalidData = fmt.Errorf("%w: invalid data", ErrDictctl)

func newApp() *cli.App {
	return &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "Inspect and maintain dictionary data.",
		Version: app.BuildVersion(),
		Commands: []*cli.Command{
			sortKeyCommand,
			headwordCommand,
			validateCommand,
			replayCommand,
			migrateCommand,
		},
	}
}

// newTable returns a table that prints to the app's writer.
func newTable(w io.Writer, headers ...interface{}) table.Table {
	return table.New(headers...).WithWriter(w)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
