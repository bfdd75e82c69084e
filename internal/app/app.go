package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/tjdict-backend/internal/adapter/postgres/entry"
	"github.com/heartmarshall/tjdict-backend/internal/config"
	"github.com/heartmarshall/tjdict-backend/internal/lexicon"
	entrysvc "github.com/heartmarshall/tjdict-backend/internal/service/entry"
	"github.com/heartmarshall/tjdict-backend/internal/transport/middleware"
	"github.com/heartmarshall/tjdict-backend/internal/transport/rest"
)

// Run starts the HTTP server for the live editing path and blocks until ctx
// is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := NewLogger(cfg.Log, "server")
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	handler, cleanup, err := NewHandler(cfg, pool, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// NewHandler wires repositories, the entry service and the REST router on
// top of pool. The returned cleanup stops background workers.
func NewHandler(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (http.Handler, func(), error) {
	builder, err := lexicon.NewDefaultBuilder()
	if err != nil {
		return nil, nil, fmt.Errorf("entry schema: %w", err)
	}

	entries := entry.New(pool)
	svc := entrysvc.NewService(logger, entries, builder, postgres.NewTxManager(pool))

	rl := middleware.NewRateLimiter(time.Minute)

	handler := rest.NewRouter(rest.RouterDeps{
		Entries: rest.NewEntriesHandler(svc, logger),
		Health: rest.NewHealthHandler(BuildVersion(),
			rest.Check{Name: "database", Probe: pool.Ping},
			rest.Check{Name: "entries", Probe: func(ctx context.Context) error {
				_, _, err := entries.PageRange(ctx)
				return err
			}},
		),
		RateLimiter: rl,
		Server:      cfg.Server,
		CORS:        cfg.CORS,
		Log:         logger,
	})
	return handler, rl.Stop, nil
}
