// Package server wires the pages, the JSON API and the static assets
// onto one router and runs the HTTP listener.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cinewatch/internal/api"
	"cinewatch/internal/config"
	"cinewatch/internal/omdb"
	"cinewatch/internal/poster"
	"cinewatch/internal/render"
	"cinewatch/internal/session"
	"cinewatch/internal/storage"
	"cinewatch/internal/support"
	"cinewatch/internal/tmdb"
	"cinewatch/internal/web"
)

// Deps are the services the server routes to. Posters is optional.
type Deps struct {
	Store   *storage.Storage
	TMDB    *tmdb.Client
	OMDB    *omdb.Client
	Data    *support.Data
	Posters *poster.Service
}

type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	sessions   *session.Registry
	web        *web.Handler
	api        *api.Handler
}

func New(cfg *config.Config, logger zerolog.Logger, deps Deps) (*Server, error) {
	renderer, err := render.New(logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: session.NewRegistry(cfg.Sessions.Capacity, cfg.Sessions.TTL.Duration),
	}

	s.web = web.NewHandler(web.Options{
		TMDB:     deps.TMDB,
		OMDB:     deps.OMDB,
		Data:     deps.Data,
		Store:    deps.Store,
		Images:   render.NewImages(cfg.TMDB.ImageBaseURL, deps.Posters != nil),
		Renderer: renderer,
	}, logger)

	s.api = api.NewHandler(deps.TMDB, deps.Store, deps.Data, s.sessions, logger)
	if deps.Posters != nil {
		s.api.SetPosterService(deps.Posters)
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestIDHeader)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/static/*", http.StripPrefix("/static/", render.Static()))
	s.router.NotFound(s.web.NotFound)

	s.router.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.sessions, s.logger))

		s.web.Routes(r)

		r.Route("/api/v1", func(r chi.Router) {
			r.Use(CORSMiddleware)
			s.api.Routes(r)
		})
	})
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
