package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDSN is returned by RequireDatabase when no DSN is configured.
var ErrNoDSN = errors.New("database.dsn is required")

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.EditorHeader) == "" {
		return fmt.Errorf("server.editor_header must not be empty")
	}
	if c.Server.WriteRateLimit < 0 {
		return fmt.Errorf("server.write_rate_limit must be >= 0 (got %d)", c.Server.WriteRateLimit)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Export.validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

// RequireDatabase reports whether a database connection is configured.
// Commands that never touch Postgres skip it.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return ErrNoDSN
	}
	return nil
}

func (i *IngestConfig) validate() error {
	if i.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", i.Workers)
	}
	if i.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", i.BatchSize)
	}
	if i.DryRun && i.Load {
		return fmt.Errorf("dry_run and load are mutually exclusive")
	}
	i.AssumeComplete = ParseList(i.AssumeCompleteRaw)
	return nil
}

func (e *ExportConfig) validate() error {
	if strings.TrimSpace(e.OutDir) == "" {
		return fmt.Errorf("out_dir must not be empty")
	}
	if e.MaxChunkBytes <= 0 {
		return fmt.Errorf("max_chunk_bytes must be > 0 (got %d)", e.MaxChunkBytes)
	}
	if e.RowsPerStatement <= 0 {
		return fmt.Errorf("rows_per_statement must be > 0 (got %d)", e.RowsPerStatement)
	}
	return nil
}

// ParseList splits a comma-separated string into trimmed, non-empty items.
// An empty string returns a nil slice.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
