// Command dictctl is the operator tool for the dictionary data: it shows how
// headwords are parsed and sorted, validates source documents, replays the
// exported SQL chunks into a local SQLite database and applies the Postgres
// migrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(ExitCodeFailure)
	}
}
