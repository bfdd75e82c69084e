package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/tjdict-backend/internal/config"
	"github.com/heartmarshall/tjdict-backend/internal/transport/middleware"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Entries     *EntriesHandler
	Health      *HealthHandler
	RateLimiter *middleware.RateLimiter
	Server      config.ServerConfig
	CORS        config.CORSConfig
	Log         *slog.Logger
}

// NewRouter registers the entries API and health probes. Writes require an
// editor id and are rate limited per editor.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.Health.Live)
	mux.HandleFunc("GET /ready", d.Health.Ready)
	mux.HandleFunc("GET /health", d.Health.Health)

	mux.HandleFunc("GET /api/entries", d.Entries.List)
	mux.HandleFunc("GET /api/entries/by-page/{page}", d.Entries.ByPage)
	mux.HandleFunc("GET /api/entries/{id}", d.Entries.Get)
	mux.HandleFunc("POST /api/entries", d.Entries.Create)
	mux.HandleFunc("PUT /api/entries/{id}", d.Entries.Update)

	var limit middleware.Middleware
	if d.RateLimiter != nil {
		limit = d.RateLimiter.Limit(d.Server.WriteRateLimit)
	}
	writes := middleware.Chain(middleware.RequireEditor, limit)

	return middleware.Chain(
		middleware.RequestID,
		middleware.Logger(d.Log),
		middleware.Recovery(d.Log),
		middleware.CORS(d.CORS),
		middleware.Editor(d.Server.EditorHeader),
		middleware.OnlyMethods(writes, http.MethodPost, http.MethodPut),
	)(mux)
}
