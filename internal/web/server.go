// Package web provides the HTTP API for catalog imports, exports and CRUD.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/web/middleware"
)

// Server is the HTTP server for the catalog.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with middleware and routes configured from cfg.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Metrics.Enabled {
		s.router.Use(middleware.Metrics)
	}
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	if s.cfg.Security.EnableCSP {
		s.router.Use(securityHeaders)
	}
	if s.cfg.Rate.Enabled {
		s.router.Use(middleware.RateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Get("/kinds", s.handleListKinds)
		r.Get("/import-queue", s.handleImportQueueStatus)

		r.Get("/export/{kind}", s.handleExport)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(middleware.RateLimit(s.cfg.Rate.ImportLimit))
			}
			r.Post("/import/{kind}", s.handleImport)
		})
		r.Get("/import/{importID}", s.handleGetImport)
		r.Get("/import/{importID}/summary", s.handleImportSummary)
		r.Post("/import/{importID}/conflicts/{conflictID}/toggle", s.handleToggleConflict)
		r.Post("/import/{importID}/proceed", s.handleProceed)

		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleCreateProduct)
		r.Get("/products/{productID}", s.handleGetProduct)
		r.Put("/products/{productID}", s.handleUpdateProduct)
		r.Delete("/products/{productID}", s.handleDeleteProduct)

		r.Post("/products/{productID}/variants", s.handleCreateVariant)
		r.Put("/products/{productID}/variants/{variantID}", s.handleUpdateVariant)
		r.Delete("/products/{productID}/variants/{variantID}", s.handleDeleteVariant)

		r.Get("/facilities", s.handleListFacilities)
		r.Post("/facilities", s.handleCreateFacility)
	})
}

// Start listens on the configured address. It blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status. Encoding errors are
// only logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
