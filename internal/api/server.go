// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the yamdb HTTP surface: the middleware chain, the
health checks and every /api/v1 resource, served by one [http.Server].

cmd/api builds the services and hands their handlers over in [Handlers].
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/core/title"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// Server owns the listener for the yamdb API.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// # Handler Registry

// Handlers is everything the router mounts.
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when Postgres and Redis respond.
	Readiness http.HandlerFunc

	// Auth handles signup and confirmation code exchange.
	Auth *auth.Handler

	// Account handles user administration and /users/me.
	Account *account.Handler

	// Categories and Genres manage the two taxonomy vocabularies.
	Categories *reference.Handler
	Genres     *reference.Handler

	// Title manages the catalogue of reviewable works.
	Title *title.Handler

	// Review handles reviews and comments nested under titles.
	Review *review.Handler
}

// # Construction

// NewServer wraps [NewRouter] in an [http.Server] listening on SERVER_PORT.
// Background middleware state lives until context is cancelled.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, loader middleware.PrincipalLoader, h Handlers) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.ServerPort),
			Handler:           NewRouter(context, cfg, log, verifier, loader, h),
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		},
	}
}

// NewRouter builds the routing tree. It is separate from [NewServer] so the
// whole tree can be exercised with httptest.
func NewRouter(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, loader middleware.PrincipalLoader, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Order matters: the request ID and logger wrap everything, and the
	// principal is resolved before any handler runs.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Authenticate(verifier, loader))
	r.Use(chimw.CleanPath)

	// Health checks
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/users", h.Account.Routes())
		api.Mount("/categories", h.Categories.Routes())
		api.Mount("/genres", h.Genres.Routes())
		api.Mount("/titles", h.Title.Routes())

		// /titles/{titleID}/reviews/... takes precedence over the /titles catch-all.
		h.Review.RegisterRoutes(api)
	})

	return r
}

// # Lifecycle

/*
Run serves until context is cancelled or the listener fails.

Description: On cancellation in-flight requests get shutdownTimeout to
finish before the listener is torn down.

Parameters:
  - context: context.Context (cancelled on SIGINT/SIGTERM by the caller)
  - shutdownTimeout: time.Duration

Returns:
  - error: A listener failure or an unclean shutdown
*/
func (s *Server) Run(context context.Context, shutdownTimeout time.Duration) error {
	listenErr := make(chan error, 1)
	go func() {
		s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
		listenErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: listen: %w", err)
	case <-context.Done():
	}

	s.log.Info("server_stopping", slog.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := contextWithTimeout(shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}

// contextWithTimeout starts from Background because the serving context is
// already cancelled by the time shutdown begins.
func contextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
