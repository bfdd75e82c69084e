// Command ingest runs the batch pipeline over the YAML source documents:
// every entry is normalized, the full export set (JSON array, SQL chunks,
// update script) is regenerated, and with --load the records are
// bulk-upserted into Postgres.
//
// Flags:
//
//	--source    directory holding the YAML documents (overrides ingest.source_dir)
//	--out       export directory (overrides export.out_dir)
//	--dry-run   normalize and report without writing any output
//	--load      upsert the records into the database after export
//
// Exit codes: 0 = success, 1 = error or rejected entries.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres/entry"
	"github.com/heartmarshall/tjdict-backend/internal/app"
	"github.com/heartmarshall/tjdict-backend/internal/app/export"
	"github.com/heartmarshall/tjdict-backend/internal/app/ingest"
	"github.com/heartmarshall/tjdict-backend/internal/config"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

// Compile-time interface assertions.
var (
	_ ingest.EntryBulkRepo = (*entry.Repo)(nil)
	_ ingest.RecordBuilder = (*lexicon.Builder)(nil)
	_ ingest.Exporter      = (*export.Exporter)(nil)
)

func main() {
	sourceFlag := flag.String("source", "", "directory holding the YAML source documents")
	outFlag := flag.String("out", "", "export directory")
	dryRunFlag := flag.Bool("dry-run", false, "normalize without writing output")
	loadFlag := flag.Bool("load", false, "bulk-upsert records into the database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags override config.
	if *sourceFlag != "" {
		cfg.Ingest.SourceDir = *sourceFlag
	}
	if *outFlag != "" {
		cfg.Export.OutDir = *outFlag
	}
	if *dryRunFlag {
		cfg.Ingest.DryRun = true
	}
	if *loadFlag {
		cfg.Ingest.Load = true
	}

	logger := app.NewLogger(cfg.Log, "ingest")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	builder, err := lexicon.NewDefaultBuilder()
	if err != nil {
		logger.Error("load entry schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	exporter := export.NewExporter(logger, export.Config{
		OutDir:           cfg.Export.OutDir,
		ChunkDir:         cfg.Export.ChunkDir,
		MaxChunkBytes:    cfg.Export.MaxChunkBytes,
		RowsPerStatement: cfg.Export.RowsPerStatement,
	})

	var repo ingest.EntryBulkRepo
	if cfg.Ingest.Load && !cfg.Ingest.DryRun {
		if err := cfg.RequireDatabase(); err != nil {
			logger.Error("--load needs a database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		repo = entry.New(pool)
	}

	pipeline := ingest.NewPipeline(logger, builder, exporter, repo, ingest.Config{
		SourceDir:      cfg.Ingest.SourceDir,
		Workers:        cfg.Ingest.Workers,
		AssumeComplete: cfg.Ingest.AssumeComplete,
		BatchSize:      cfg.Ingest.BatchSize,
		DryRun:         cfg.Ingest.DryRun,
		Load:           cfg.Ingest.Load,
	})
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with errors", slog.Int("rejected", len(pipeline.Failures())))
		os.Exit(1)
	}

	logger.Info("pipeline completed successfully", slog.Int("records", len(pipeline.Records())))
}
