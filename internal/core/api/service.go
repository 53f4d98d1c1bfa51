// Package api provides HTTP handlers for the RateKeeper admin API.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/parcelforge/ratekeeper/internal/core/auth"
	"github.com/parcelforge/ratekeeper/internal/core/config"
	"github.com/parcelforge/ratekeeper/internal/core/store"
)

// Service implements the admin API handlers.
// Thin orchestration layer delegating to store, rules, and auth packages.
type Service struct {
	store store.GroupStore
	db    *sqlx.DB
	cfg   *config.AdminAPIConfig
	log   *slog.Logger
}

// NewService creates a service instance with dependencies.
// db may be nil for deployments backed by the in-memory store; the health
// check then skips the database ping.
func NewService(groups store.GroupStore, db *sqlx.DB, cfg *config.AdminAPIConfig, log *slog.Logger) (*Service, error) {
	if groups == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store: groups,
		db:    db,
		cfg:   cfg,
		log:   log,
	}, nil
}

// Router builds the chi router with middleware and all admin API routes.
// authn may be nil to disable authentication (tests, local development).
func (s *Service) Router(authn *auth.Authenticator) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if authn != nil {
			r.Use(authn.Middleware)
		}

		r.Get("/fields", s.handleFields)
		r.Post("/rules/validate", s.handleValidateRule)
		r.Post("/preview", s.handlePreview)

		r.Route("/rule-groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Put("/", s.handleUpdateGroup)
				r.Delete("/", s.handleDeleteGroup)
				r.Post("/preview", s.handleGroupPreview)
			})
		})
	})

	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
