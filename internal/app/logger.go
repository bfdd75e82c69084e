package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/tjdict-backend/internal/config"
)

// NewLogger creates the process logger for the named command and sets it as
// the slog default. Output goes to os.Stderr.
//
// Format "json" produces structured output; "text" is human-readable and
// carries source locations. Level is one of debug, info, warn, error
// (case-insensitive) and defaults to info.
func NewLogger(cfg config.LogConfig, command string) *slog.Logger {
	logger := commandLogger(os.Stderr, cfg, command)
	slog.SetDefault(logger)
	return logger
}

// commandLogger tags every record with the command and build version so
// server, ingest and dictctl output can be told apart in one stream.
func commandLogger(w io.Writer, cfg config.LogConfig, command string) *slog.Logger {
	return newLogger(w, cfg).With(
		slog.String("cmd", command),
		slog.String("version", Version),
	)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
