// Package web serves the contact and campaign HTTP API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/outreach/internal/config"
	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/logging"
	webmw "github.com/JonMunkholm/outreach/internal/web/middleware"
)

// Server is the HTTP server for the contact service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiter       *rateLimiter
	uploadLimiter *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploadLimiter = newRateLimiter(cfg.Rate.UploadLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(requestContext)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	if len(s.cfg.Security.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-User-UID", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Total-Contacts", "X-Duplicates-Removed"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		// Contact files
		r.Group(func(r chi.Router) {
			r.Use(s.limitUploads)
			r.Post("/contacts/preview", s.handlePreview)
			r.Post("/contacts/dedupe", s.handleDedupe)
		})
		r.Post("/contacts/search", s.handleSearch)

		// Saved previews
		r.Get("/previews", s.handleListPreviews)
		r.Delete("/previews", s.handleClearPreviews)

		r.Route("/campaigns/{campaignID}", func(r chi.Router) {
			r.Get("/preview", s.handleGetPreview)
			r.Delete("/preview", s.handleDeletePreview)
			r.Get("/preview/search", s.handleSearchPreview)

			r.Get("/config", s.handleGetConfig)
			r.Put("/config", s.handlePutConfig)
			r.Delete("/config", s.handleDeleteConfig)

			r.Get("/progress", s.handleGetProgress)
			r.Post("/progress", s.handleComputeProgress)

			r.With(s.limitUploads).Post("/contacts", s.handleUploadContacts)
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	s.uploadLimiter.stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) limitUploads(next http.Handler) http.Handler {
	if s.uploadLimiter == nil {
		return next
	}
	return s.uploadLimiter.middleware(next)
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// JSON and CSV only; nothing here should load resources
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
