package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
)

// Phase names in execution order.
const (
	PhaseNormalize = "normalize"
	PhaseExport    = "export"
	PhaseLoad      = "load"
)

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Errors   int
	Warnings int
	Duration time.Duration
	Err      error
}

// Pipeline orchestrates normalize → export → load.
type Pipeline struct {
	log      *slog.Logger
	builder  RecordBuilder
	exporter Exporter
	repo     EntryBulkRepo
	cfg      Config

	runID    uuid.UUID
	results  map[string]PhaseResult
	records  []*domain.Record
	failures []*domain.EntryFailure
}

// NewPipeline creates a new Pipeline. repo may be nil when Config.Load is off.
func NewPipeline(log *slog.Logger, builder RecordBuilder, exporter Exporter, repo EntryBulkRepo, cfg Config) *Pipeline {
	runID := uuid.New()
	return &Pipeline{
		log:      log.With("service", "ingest", "run_id", runID.String()),
		builder:  builder,
		exporter: exporter,
		repo:     repo,
		cfg:      cfg,
		runID:    runID,
		results:  make(map[string]PhaseResult),
	}
}

// RunID identifies this pipeline run in logs.
func (p *Pipeline) RunID() uuid.UUID { return p.runID }

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult { return p.results }

// Records returns the records produced by the normalize phase in source order.
func (p *Pipeline) Records() []*domain.Record { return p.records }

// Failures returns the rejected entries in source order.
func (p *Pipeline) Failures() []*domain.EntryFailure { return p.failures }

// HasErrors returns true if any phase recorded errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run executes the pipeline. Bad entries never abort the run; Run only fails
// when the source cannot be listed or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.log.Info("starting phase", slog.String("phase", PhaseNormalize))
	normalize, err := p.normalize(ctx)
	if err != nil {
		return err
	}
	normalize.Duration = time.Since(start)
	p.results[PhaseNormalize] = normalize
	p.logPhase(PhaseNormalize, normalize)

	for _, phase := range []string{PhaseExport, PhaseLoad} {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		var result PhaseResult
		switch phase {
		case PhaseExport:
			result = p.runExport(ctx)
		case PhaseLoad:
			if !p.cfg.Load {
				continue
			}
			result = p.runLoad(ctx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result
		p.logPhase(phase, result)
	}

	p.log.Info("pipeline completed",
		slog.Int("records", len(p.records)),
		slog.Int("rejected", len(p.failures)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (p *Pipeline) logPhase(phase string, result PhaseResult) {
	if result.Err != nil {
		p.log.Warn("phase failed",
			slog.String("phase", phase),
			slog.String("error", result.Err.Error()),
			slog.Duration("duration", result.Duration),
		)
		return
	}
	p.log.Info("phase completed",
		slog.String("phase", phase),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
		slog.Int("warnings", result.Warnings),
		slog.Duration("duration", result.Duration),
	)
}

// docResult is the per-document slot filled by one worker.
type docResult struct {
	records  []*domain.Record
	indices  []int
	failures []*domain.EntryFailure
	warnings int
	err      error
}

// normalize processes documents in parallel, one worker per document, and
// merges the per-document results in document order.
func (p *Pipeline) normalize(ctx context.Context) (PhaseResult, error) {
	refs, err := ListDocuments(p.cfg.SourceDir, p.cfg.AssumeComplete)
	if err != nil {
		return PhaseResult{}, err
	}

	slots := make([]docResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Workers, 1))
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = p.processDocument(ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PhaseResult{}, fmt.Errorf("ingest: normalize: %w", err)
	}

	var result PhaseResult
	seen := make(map[string]string)
	for i, slot := range slots {
		if slot.err != nil {
			p.log.Error("document skipped",
				slog.String("source", refs[i].Name),
				slog.String("error", slot.err.Error()),
			)
			result.Errors++
			continue
		}
		result.Warnings += slot.warnings
		p.failures = append(p.failures, slot.failures...)

		for j, rec := range slot.records {
			key := recordKey(rec)
			if first, dup := seen[key]; dup {
				f := &domain.EntryFailure{
					Kind:   domain.FailureDuplicateEntry,
					Source: refs[i].Name,
					Index:  slot.indices[j],
					Head:   rec.Head,
					Err:    fmt.Errorf("%w: already defined in %s", domain.ErrAlreadyExists, first),
				}
				p.logFailure(f)
				p.failures = append(p.failures, f)
				continue
			}
			seen[key] = refs[i].Name
			p.records = append(p.records, rec)
		}
	}

	result.Inserted = len(p.records)
	result.Skipped = len(p.failures)
	return result, nil
}

func (p *Pipeline) processDocument(ref DocumentRef) docResult {
	doc, err := LoadDocument(ref)
	if err != nil {
		return docResult{err: err}
	}

	var out docResult
	for i, node := range doc.Entries {
		built, err := p.builder.Build(node, lexicon.Source{
			File:           ref.Name,
			Index:          i,
			Page:           ref.Page,
			AssumeComplete: ref.AssumeComplete,
		})
		if err != nil {
			var f *domain.EntryFailure
			if !errors.As(err, &f) {
				f = &domain.EntryFailure{Kind: domain.FailureMalformedEntry, Source: ref.Name, Index: i, Err: err}
			}
			p.logFailure(f)
			out.failures = append(out.failures, f)
			continue
		}

		for _, w := range built.Warnings {
			p.log.Warn("entry warning",
				slog.String("source", ref.Name),
				slog.Int("index", i),
				slog.String("head", built.Record.Head),
				slog.String("kind", string(w.Kind)),
				slog.String("path", w.Path),
				slog.String("message", w.Message),
			)
		}
		out.warnings += len(built.Warnings)
		out.records = append(out.records, built.Record)
		out.indices = append(out.indices, i)
	}
	return out
}

func (p *Pipeline) logFailure(f *domain.EntryFailure) {
	attrs := []any{
		slog.String("source", f.Source),
		slog.Int("index", f.Index),
		slog.String("head", f.Head),
		slog.String("kind", string(f.Kind)),
	}
	if len(f.Violations) > 0 {
		paths := make([]string, len(f.Violations))
		for i, v := range f.Violations {
			paths[i] = v.Field + ": " + v.Message
		}
		attrs = append(attrs, slog.Any("violations", paths))
	} else if f.Err != nil {
		attrs = append(attrs, slog.String("error", f.Err.Error()))
	}
	p.log.Warn("entry rejected", attrs...)
}

func (p *Pipeline) runExport(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(p.records)}
	}
	summary, err := p.exporter.Export(ctx, p.records)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("export: %w", err)}
	}
	return PhaseResult{Inserted: summary.Records}
}

func (p *Pipeline) runLoad(ctx context.Context) PhaseResult {
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(p.records)}
	}
	if p.repo == nil {
		return PhaseResult{Skipped: len(p.records), Err: fmt.Errorf("database not configured")}
	}

	inserted, err := batchProcess(p.records, p.cfg.BatchSize, func(batch []*domain.Record) (int, error) {
		return p.repo.BulkUpsert(ctx, batch)
	})
	if err != nil {
		return PhaseResult{Inserted: inserted, Err: fmt.Errorf("load entries: %w", err)}
	}
	return PhaseResult{Inserted: inserted}
}

func recordKey(r *domain.Record) string {
	if r.HeadNumber == nil {
		return r.Head
	}
	return r.Head + "\x00" + strconv.Itoa(*r.HeadNumber)
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
