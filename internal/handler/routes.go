package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaultpass/passgen-go/internal/middleware"
)

// RouterConfig carries what NewRouter needs. History is nil when no
// database is configured, in which case the history routes are not mounted.
type RouterConfig struct {
	Generator      *GeneratorHandler
	History        *HistoryHandler
	TokenSecret    string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires the API routes:
//
//	GET  /health
//	POST /api/v1/generate        rate limited
//	POST /api/v1/strength        rate limited
//	GET  /api/v1/history         bearer token
//	GET  /api/v1/history/stats   bearer token
//
// Background work started for the router stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Post("/api/v1/generate", cfg.Generator.HandleGenerate)
		r.Post("/api/v1/strength", cfg.Generator.HandleStrength)
	})

	if cfg.History != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(cfg.TokenSecret))
			r.Get("/api/v1/history", cfg.History.HandleRecent)
			r.Get("/api/v1/history/stats", cfg.History.HandleStats)
		})
	}

	return r
}
