// Package server is the web dashboard of the dividend analysis.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/agent"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Addr      string
	Log       zerolog.Logger
	Fetcher   dividends.Fetcher
	Portfolio *dividends.Portfolio // shown until a user uploads its own
	Options   dividends.Options
	// Narrator returns the generator of the narrative of a report, nil
	// disables narratives.
	Narrator   func(*dividends.Report) agent.Generator
	SessionTTL time.Duration // 24h if zero
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	fetcher   dividends.Fetcher
	portfolio *dividends.Portfolio
	options   dividends.Options
	narrator  func(*dividends.Report) agent.Generator
	sessions  *sessions
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		fetcher:   cfg.Fetcher,
		portfolio: cfg.Portfolio,
		options:   cfg.Options,
		narrator:  cfg.Narrator,
		sessions:  newSessions(ttl),
	}
	s.options.Log = &s.log

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// an analysis fetches every position, and narratives are slow
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routes of the dashboard.
func (s *Server) Handler() http.Handler { return s.router }

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/", s.handleIndex)
	s.router.Post("/upload", s.handleUpload)
	s.router.Post("/reset", s.handleReset)
	s.router.Get("/export.csv", s.handleExportCSV)
	s.router.Post("/narrative", s.handleNarrative)
	s.router.Get("/narrative.txt", s.handleNarrativeText)
	s.router.Get("/report.pdf", s.handleReportPDF)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
