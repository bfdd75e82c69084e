package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/heartmarshall/tjdict-backend/internal/app/export"
)

// ReplayResult reports how a replay went, file by file.
type ReplayResult struct {
	Applied  []string
	Failed   map[string]error
	Duration time.Duration
}

// HasErrors reports whether any file failed.
func (r *ReplayResult) HasErrors() bool { return len(r.Failed) > 0 }

// Replayer applies SQL files to a DB. Each file runs in its own
// transaction, so a failing file leaves no partial rows behind.
type Replayer struct {
	db  *DB
	log *slog.Logger
}

// NewReplayer creates a Replayer.
func NewReplayer(db *DB, log *slog.Logger) *Replayer {
	return &Replayer{db: db, log: log.With("component", "replay")}
}

// ReplayDir applies every entries-*.sql chunk in dir in name order.
// A failing chunk is logged and skipped; the rest still run.
func (r *Replayer) ReplayDir(ctx context.Context, dir string) (*ReplayResult, error) {
	files, err := export.ChunkFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no chunk files in %s", dir)
	}
	return r.ReplayFiles(ctx, files)
}

// ReplayFiles applies the given files in order.
func (r *Replayer) ReplayFiles(ctx context.Context, files []string) (*ReplayResult, error) {
	start := time.Now()
	result := &ReplayResult{Failed: make(map[string]error)}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := filepath.Base(path)
		r.log.Info("applying file", slog.String("file", name), slog.Int("n", i+1), slog.Int("of", len(files)))

		if err := r.applyFile(ctx, path); err != nil {
			r.log.Error("file failed", slog.String("file", name), slog.String("error", err.Error()))
			result.Failed[name] = err
			continue
		}
		result.Applied = append(result.Applied, name)
	}

	result.Duration = time.Since(start)
	r.log.Info("replay complete",
		slog.Int("applied", len(result.Applied)),
		slog.Int("failed", len(result.Failed)),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func (r *Replayer) applyFile(ctx context.Context, path string) (err error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return tx.Commit()
}
