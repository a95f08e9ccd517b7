// Package web is the HTTP control surface: application state, login flow,
// transport commands and the embedded-player page.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/auroraviz/aurora/internal/engine"
)

// Orchestrator is the engine surface the handlers drive
type Orchestrator interface {
	CurrentState() engine.State
	Login() (string, error)
	CompleteLogin(ctx context.Context, fragment string) error
	ListenNow()
	Back()
	Disconnect()
	TogglePlay(ctx context.Context)
	NextTrack(ctx context.Context)
	PreviousTrack(ctx context.Context)
}

// Config is the configuration surface the server needs
type Config interface {
	ListenAddr() string
	TrackURIs() []string
}

// Server is the HTTP control server
type Server struct {
	logger  *zap.Logger
	router  chi.Router
	server  *http.Server
	handler *Handlers
}

// NewServer creates the control server on the configured listen address
func NewServer(logger *zap.Logger, cfg Config, orch Orchestrator) *Server {
	handler := NewHandlers(logger, orch, cfg.TrackURIs())

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	s := &Server{
		logger:  logger,
		router:  router,
		handler: handler,
		server: &http.Server{
			Addr:         cfg.ListenAddr(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/callback", s.handler.Callback)
	s.router.Get("/embed", s.handler.EmbedPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handler.State)
		r.Post("/login", s.handler.Login)
		r.Post("/auth/fragment", s.handler.AuthFragment)
		r.Post("/listen-now", s.handler.ListenNow)
		r.Post("/back", s.handler.Back)
		r.Post("/disconnect", s.handler.Disconnect)

		r.Route("/player", func(r chi.Router) {
			r.Post("/toggle", s.handler.TogglePlay)
			r.Post("/next", s.handler.NextTrack)
			r.Post("/previous", s.handler.PreviousTrack)
		})
	})
}

// Router exposes the handler tree, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Control server listening", zap.String("addr", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Control server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Control server shutting down")
	return s.server.Shutdown(ctx)
}
