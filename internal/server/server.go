package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/api"
	"github.com/pageza/cibaria/backend/internal/middleware"
)

const (
	readHeaderTimeout = 10 * time.Second
	// Multipart uploads of several photos can take a while.
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    zerolog.Logger
}

// New builds the router and middleware chain around the API routes.
func New(cfg *config.Config, deps api.Dependencies, log zerolog.Logger) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogging(log, deps.Metrics),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.ErrorHandler(log),
	)
	api.RegisterRoutes(router, deps)

	return &Server{
		router: router,
		log:    log,
		http: &http.Server{
			Addr:              cfg.ServerAddr(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down. It returns nil after a
// graceful Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
