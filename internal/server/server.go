package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/db"
	"github.com/sp-meter/circles/internal/logger"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowAll       bool     // allow all CORS origins (dev mode)
	AllowedOrigins []string // replaces the localhost defaults when set
}

// Server hosts the conversion pages, their websockets and the JSON APIs.
type Server struct {
	cfg        Config
	db         *db.DB
	log        *zap.SugaredLogger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. database may be nil when history is disabled.
func New(cfg Config, database *db.DB, log *zap.SugaredLogger) *Server {
	s := &Server{
		cfg: cfg,
		db:  database,
		log: logger.OrNop(log),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(exceptPrefix("/ws/", middleware.Timeout(60*time.Second)))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.AllowedOrigins
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", s.handleHealth)

	// Pages and APIs are registered by feature packages via RegisterRoutes.

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.log.Warnw("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// exceptPrefix applies mw to every request whose path does not start with
// prefix. Websocket routes outlive any request timeout.
func exceptPrefix(prefix string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection, or nil.
func (s *Server) Database() *db.DB { return s.db }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Infow("circles server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
