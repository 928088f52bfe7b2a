// Package httpapi exposes the auth and game operations over HTTP using gin.
// Handlers only translate between HTTP and the services; every rule lives
// in the services and the game package.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the HTTP-level settings.
type Options struct {
	Address     string
	Debug       bool
	CORSOrigins []string
}

type Server struct {
	opts        Options
	logger      logging.Logger
	credentials *services.CredentialService
	sessions    *services.SessionService
	games       *services.GameService
	health      *services.HealthService
	engine      *gin.Engine
}

// NewServer constructs the HTTP API over the given services.
func NewServer(opts Options, l logging.Logger, cs *services.CredentialService, ss *services.SessionService,
	gs *services.GameService, hs *services.HealthService) *Server {

	s := &Server{
		opts:        opts,
		logger:      l.With("module", "http_server"),
		credentials: cs,
		sessions:    ss,
		games:       gs,
		health:      hs,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if len(s.opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = s.opts.CORSOrigins
		cfg.AllowCredentials = true
		cfg.AllowMethods = []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"}
		cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		r.Use(cors.New(cfg))
	}

	r.GET("/", s.root)
	r.GET("/health", s.healthCheck)
	r.HEAD("/health", s.healthCheck)

	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.DELETE("/delete", s.deleteAccount)

	authed := r.Group("/")
	authed.Use(s.requireSession())
	{
		authed.POST("/logout", s.logout)
		authed.POST("/game/save", s.saveState)
		authed.PUT("/game/update", s.updateState)
		authed.GET("/game/sync", s.syncState)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
