// Package server wires the chi router, the middleware chain and the
// lifecycle of the HTTP server of the medicines API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/giygas/medicines-api/config"
	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	profilingAddr = "localhost:6060"
	indexFile     = "html/index.html"
)

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	router    chi.Router
	handler   interfaces.HTTPHandler
	limiter   *RateLimiter
	config    *config.Config
	profiling *http.Server
}

// NewServer creates a new server instance. limiter may be nil to disable rate limiting.
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler, limiter *RateLimiter) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              cfg.ListenAddr(),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    int(cfg.MaxHeaderSize),
		},
		router:  router,
		handler: handler,
		limiter: limiter,
		config:  cfg,
	}

	if cfg.IsDevelopment() {
		s.profiling = &http.Server{
			Addr:              profilingAddr,
			Handler:           http.DefaultServeMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(metrics.Metrics)
	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/manufacturers", h.TopManufacturers)
		r.Get("/paracetamol", h.Paracetamol)
		r.Get("/price-stats", h.PriceStats)
		r.Get("/diabetes", h.Diabetes)
		r.Get("/compositions", h.Compositions)
		r.Get("/summary", h.Summary)
		r.Get("/search", h.Search)
		r.Get("/suggestions", h.Suggestions)
		r.Get("/companies", h.Companies)
		r.Get("/filter-by-company", h.FilterByCompany)
		r.Get("/medicine-details", h.MedicineDetails)

		r.Get("/blood-pressure", h.BloodPressure)
		r.Get("/diclofenac", h.Diclofenac)
		r.Get("/complexity", h.Complexity)
		r.Get("/portfolio", h.Portfolio)
	})

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, indexFile)
	})
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if s.profiling != nil {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.profiling != nil {
		if err := s.profiling.Shutdown(ctx); err != nil {
			logging.Warn("Profiling server shutdown failed", "error", err)
		}
	}

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer serves net/http/pprof on localhost in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started", "url", "http://"+profilingAddr+"/debug/pprof/")
		if err := s.profiling.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
