// Package api provides the HTTP API server and handlers for the comic catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/http/response"
	"github.com/panelverse/panelverse-server/internal/ratelimit"
	"github.com/panelverse/panelverse-server/internal/service"
	"github.com/panelverse/panelverse-server/internal/validation"
)

// Write-path throttling, keyed per author.
const (
	uploadRPS   = 1
	uploadBurst = 5
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog       *service.Catalog
	verifier      auth.Verifier
	validate      *validation.Validator
	uploadLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(catalog *service.Catalog, verifier auth.Verifier, logger *slog.Logger) *Server {
	s := &Server{
		catalog:       catalog,
		verifier:      verifier,
		validate:      validation.New(),
		uploadLimiter: ratelimit.New(uploadRPS, uploadBurst),
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Upload (authors only, throttled per author).
		r.With(s.requireAuth, s.throttleUploads).Post("/upload", s.handleUpload)

		r.Route("/comics", func(r chi.Router) {
			// Public catalog; auth is optional but required for mine=true.
			r.With(s.optionalAuth).Get("/", s.handleListComics)
			r.With(s.optionalAuth).Get("/tags", s.handleListTags)

			r.With(s.requireAuth).Get("/saved", s.handleSavedComics)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetComic)
				r.With(s.requireAuth).Patch("/", s.handlePatchComic)
				r.With(s.requireAuth).Delete("/", s.handleDeleteComic)

				r.With(s.requireAuth).Post("/save", s.handleSaveComic)
				r.With(s.requireAuth).Delete("/save", s.handleUnsaveComic)
			})
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
