// Package server provides the HTTP API for the food search service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mealgrid/foodsearch/internal/config"
	"github.com/mealgrid/foodsearch/internal/search"
	"github.com/mealgrid/foodsearch/internal/storage"
)

// Server is the HTTP server for the food search API.
type Server struct {
	engine    *search.Engine
	store     storage.FoodStore
	config    *config.ServerConfig
	appConfig *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. appConfig is only
// read by the status endpoint and may be nil in tests.
func NewServer(
	engine *search.Engine,
	store storage.FoodStore,
	cfg *config.ServerConfig,
	appConfig *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:    engine,
		store:     store,
		config:    cfg,
		appConfig: appConfig,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
