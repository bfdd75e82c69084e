// Package export writes normalized records to the bulk formats consumed by
// the relational load: a JSON document, size-bounded INSERT chunk files, and
// an UPDATE file keyed by (head, head_number).
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/heartmarshall/tjdict-backend/internal/domain"
)

const (
	jsonFileName   = "entries.json"
	updateFileName = "update-sort-keys.sql"
	chunkPrefix    = "entries-"
	chunkSuffix    = ".sql"
)

// Config holds exporter settings.
type Config struct {
	OutDir           string
	ChunkDir         string
	MaxChunkBytes    int
	RowsPerStatement int
}

// Summary describes the files written by one export run.
type Summary struct {
	Records    int
	Statements int
	JSONPath   string
	UpdatePath string
	ChunkPaths []string
	Duration   time.Duration
}

// Exporter regenerates the full export set on every run. It is not
// incremental: chunk files from an earlier run are removed first.
type Exporter struct {
	log *slog.Logger
	cfg Config
}

// NewExporter creates a new Exporter.
func NewExporter(log *slog.Logger, cfg Config) *Exporter {
	if cfg.ChunkDir == "" {
		cfg.ChunkDir = filepath.Join(cfg.OutDir, "sql-chunks")
	}
	return &Exporter{
		log: log.With("component", "export"),
		cfg: cfg,
	}
}

// jsonRecord is the bulk JSON shape of one record.
type jsonRecord struct {
	Head       string `json:"head"`
	HeadNumber *int   `json:"head_number,omitempty"`
	Page       *int   `json:"page,omitempty"`
	SortKey    string `json:"sort_key"`
	EntryData  string `json:"entry_data"`
	IsComplete int    `json:"is_complete"`
	SourceFile string `json:"source_file"`
}

// Export writes all output files for records.
func (e *Exporter) Export(ctx context.Context, records []*domain.Record) (*Summary, error) {
	start := time.Now()

	for _, dir := range []string{e.cfg.OutDir, e.cfg.ChunkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("export: create %s: %w", dir, err)
		}
	}

	summary := &Summary{
		Records:    len(records),
		JSONPath:   filepath.Join(e.cfg.OutDir, jsonFileName),
		UpdatePath: filepath.Join(e.cfg.OutDir, updateFileName),
	}

	if err := e.writeJSON(summary.JSONPath, records); err != nil {
		return nil, err
	}

	if err := removeChunks(e.cfg.ChunkDir); err != nil {
		return nil, err
	}

	statements := InsertStatements(records, e.cfg.RowsPerStatement)
	summary.Statements = len(statements)
	for i, chunk := range Chunk(statements, e.cfg.MaxChunkBytes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(e.cfg.ChunkDir, fmt.Sprintf("%s%04d%s", chunkPrefix, i+1, chunkSuffix))
		if err := writeStatements(path, chunk); err != nil {
			return nil, err
		}
		summary.ChunkPaths = append(summary.ChunkPaths, path)
	}

	if err := writeStatements(summary.UpdatePath, UpdateStatements(records)); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	e.log.Info("export completed",
		slog.Int("records", summary.Records),
		slog.Int("statements", summary.Statements),
		slog.Int("chunks", len(summary.ChunkPaths)),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (e *Exporter) writeJSON(path string, records []*domain.Record) error {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = jsonRecord{
			Head:       r.Head,
			HeadNumber: r.HeadNumber,
			Page:       r.Page,
			SortKey:    r.SortKey,
			EntryData:  string(r.EntryData),
			IsComplete: r.CompleteFlag(),
		}
		if r.SourceFile != nil {
			out[i].SourceFile = *r.SourceFile
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads records previously written by Export.
func ReadJSON(path string) ([]*domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", path, err)
	}
	var in []jsonRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("export: decode %s: %w", path, err)
	}

	out := make([]*domain.Record, len(in))
	for i, r := range in {
		out[i] = &domain.Record{
			Head:       r.Head,
			HeadNumber: r.HeadNumber,
			Page:       r.Page,
			SortKey:    r.SortKey,
			EntryData:  json.RawMessage(r.EntryData),
			IsComplete: r.IsComplete != 0,
		}
		if r.SourceFile != "" {
			file := r.SourceFile
			out[i].SourceFile = &file
		}
	}
	return out, nil
}

// ChunkFiles lists the chunk files in dir in load order.
func ChunkFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, chunkPrefix+"*"+chunkSuffix))
	if err != nil {
		return nil, fmt.Errorf("export: list chunks: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func removeChunks(dir string) error {
	old, err := ChunkFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range old {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("export: remove stale chunk %s: %w", path, err)
		}
	}
	return nil
}

func writeStatements(path string, statements []string) error {
	var b strings.Builder
	for _, stmt := range statements {
		b.WriteString(stmt)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
