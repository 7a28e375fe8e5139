package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/namelink/internal/audit"
	"github.com/namelink/internal/debug"
	"github.com/namelink/internal/match"
	"github.com/namelink/internal/web/handlers"
	"github.com/namelink/internal/web/metrics"
	"github.com/namelink/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	engine     *match.Engine
	tracker    *audit.Tracker
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a server over a built engine. tracker may be nil, in
// which case the run endpoints are not registered.
func NewServer(config *Config, engine *match.Engine, tracker *audit.Tracker) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("server requires a matching engine")
	}

	// Create server instance
	server := &Server{
		config:  config,
		engine:  engine,
		tracker: tracker,
	}

	// Setup routes
	server.setupRoutes()
	metrics.CorpusNames.Set(float64(engine.Corpus().Len()))

	// Create HTTP server
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{BirthYearOffset: s.config.Features.BirthYearOffset}
	handlerConfig.Features.ResolveEnabled = s.config.Features.ResolveEnabled
	handlerConfig.Features.RunsEnabled = s.config.Features.RunsEnabled && s.tracker != nil

	apiHandler := &handlers.APIHandler{Engine: s.engine, Tracker: s.tracker, Config: handlerConfig}

	// API routes
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/lookup", apiHandler.Lookup).Methods("GET")
	api.HandleFunc("/names/{name}", apiHandler.GetName).Methods("GET")
	api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")

	if handlerConfig.Features.ResolveEnabled {
		api.HandleFunc("/resolve", apiHandler.Resolve).Methods("POST")
	}

	if handlerConfig.Features.RunsEnabled {
		api.HandleFunc("/runs", apiHandler.ListRuns).Methods("GET")
		api.HandleFunc("/runs/{id}", apiHandler.GetRun).Methods("GET")
		api.HandleFunc("/runs/{id}/results", apiHandler.GetRunResults).Methods("GET")
	}

	s.router.HandleFunc("/health", apiHandler.Health).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Apply middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
	api.Use(middleware.Authentication(s.config.Auth.APIKey))
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	logger := debug.Logger()

	// Setup graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)

	// Start server in background
	go func() {
		logger.Infow("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-stop:
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
