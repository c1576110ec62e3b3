// Package httpapi implements gamayun's admin HTTP surface: job-config
// reload and a version endpoint, mounted under /api/v1.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gamayun-daemon/gamayun/internal/httpapi/middleware"
	"github.com/gamayun-daemon/gamayun/internal/httpapi/response"
)

// Default configuration values for the admin HTTP server.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 1 << 20
)

// ServerConfig holds the admin HTTP server's listen address and timeouts.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

func (cfg *ServerConfig) applyDefaults() {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Reloader is the narrow interface the reload endpoint needs from
// internal/reload.Coordinator.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Server wraps the admin HTTP server.
type Server struct {
	server *http.Server
}

// New builds the admin HTTP server. version is reported verbatim by
// GET /api/v1/version.
func New(reloader Reloader, version string, cfg ServerConfig) *Server {
	cfg.applyDefaults()

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.MaxBodyBytes(cfg.MaxBodyBytes))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs/config/reload", reloadHandler(reloader))
		r.Get("/version", versionHandler(version))
	})

	// Matches the tracing coverage the teacher gives its REST gateway
	// (otelhttp wrapping the mux) alongside otelgrpc on the gRPC server.
	handler := otelhttp.NewHandler(router, "gamayun-admin-http")

	return &Server{server: &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}}
}

func reloadHandler(reloader Reloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reloader.Reload(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "job configuration reload failed", "error", err)
			response.PlainText(w, http.StatusInternalServerError, "Failed to reload job configuration")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"version": version})
	}
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("starting admin http server", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down admin http server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
