// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/config"
)

// RouteRegistrar is implemented by the module handlers; each mounts
// its own routes under /api.
type RouteRegistrar interface {
	RegisterRoutes(chi.Router)
}

// Config holds everything the server needs wired in.
type Config struct {
	Log            zerolog.Logger
	Config         *config.Config
	Modules        []RouteRegistrar
	EventsStream   http.Handler
	EventsSocket   http.Handler
	SystemHandlers *SystemHandlers
	StaticDir      string
}

// Server is the HTTP front of the application.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	modules        []RouteRegistrar
	eventsStream   http.Handler
	eventsSocket   http.Handler
	systemHandlers *SystemHandlers
	staticDir      string
}

// New creates the HTTP server and mounts all routes.
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		modules:        cfg.Modules,
		eventsStream:   cfg.EventsStream,
		eventsSocket:   cfg.EventsSocket,
		systemHandlers: cfg.SystemHandlers,
		staticDir:      cfg.StaticDir,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		if s.eventsStream != nil {
			r.Get("/watch-investments", s.eventsStream.ServeHTTP)
		}
		if s.eventsSocket != nil {
			r.Get("/watch-investments/ws", s.eventsSocket.ServeHTTP)
		}
		for _, m := range s.modules {
			m.RegisterRoutes(r)
		}
		if s.systemHandlers != nil {
			r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/system/backups", s.systemHandlers.HandleListBackups)
			r.Post("/system/backup", s.systemHandlers.HandleTriggerBackup)
		}
	})

	if s.staticDir != "" {
		if _, err := os.Stat(s.staticDir); err == nil {
			s.router.Handle("/*", spaHandler(s.staticDir))
			s.log.Info().Str("dir", s.staticDir).Msg("Serving static UI")
		}
	}
}

// spaHandler serves static files and falls back to index.html so
// client-side routes resolve after a page reload.
func spaHandler(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := dir + r.URL.Path
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, dir+"/index.html")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","time":%q}`, time.Now().UTC().Format(time.RFC3339))
}

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

// Start begins serving. It blocks until the listener closes.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() http.Handler { return s.router }
