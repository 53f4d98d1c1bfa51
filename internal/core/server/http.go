// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/parcelforge/ratekeeper/internal/core/api"
	"github.com/parcelforge/ratekeeper/internal/core/auth"
	"github.com/parcelforge/ratekeeper/internal/core/config"
)

// HTTPServer manages admin API server lifecycle.
type HTTPServer struct {
	server *http.Server
	config *config.AdminAPIConfig
}

// NewHTTPServer creates the HTTP server with auth middleware and routes wired.
// authenticator may be nil to run without authentication.
func NewHTTPServer(cfg *config.AdminAPIConfig, service *api.Service, authenticator *auth.Authenticator) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      service.Router(authenticator),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return &HTTPServer{
		server: server,
		config: cfg,
	}, nil
}

// Start serves HTTP requests. Blocks until Shutdown is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server with a 30-second timeout.
// In-flight requests get a chance to finish before connections close.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
