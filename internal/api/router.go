// Package api exposes the scoring and run-state engines over HTTP. Every
// endpoint returns already-computed engine output; nothing here synthesizes
// content or writes state.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scoutline/compete-cli/internal/coverage"
	"github.com/scoutline/compete-cli/internal/runstate"
)

// RouterConfig carries the knobs the router needs beyond its dependencies.
type RouterConfig struct {
	RatePerSecond int
	RateBurst     int
}

// NewRouter builds the full API surface.
func NewRouter(repos runstate.Repos, policy coverage.Policy, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger())
	r.Use(RateLimit(cfg.RatePerSecond, cfg.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	state := NewStateHandler(repos)
	score := NewScoreHandler(policy)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/projects/{projectID}/state", state.Get)

		r.Post("/score/coverage", score.Coverage)
		r.Post("/score/gate", score.Gate)
		r.Post("/score/opportunities", score.Opportunities)
		r.Post("/score/competitors", score.Competitors)
	})

	return r
}
