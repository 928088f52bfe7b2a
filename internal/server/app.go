// Package server wires the game backend together: it builds the logger, the
// store (PostgreSQL pool or in-memory), the services and the HTTP server,
// and runs them until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/config"
	"github.com/dmitrijs2005/mathmystery/internal/server/database"
	"github.com/dmitrijs2005/mathmystery/internal/server/httpapi"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/saves"
	"github.com/dmitrijs2005/mathmystery/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	closeLogger func() error
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, closeLogger := newLogger(c)

	rm, err := newRepositoryManager(ctx, c)
	if err != nil {
		_ = closeLogger()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		_ = closeLogger()
		return nil, err
	}

	if c.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cs := services.NewCredentialService(rm, logger)
	ss := services.NewSessionService(rm, c.SecretKey, c.SessionTTL, logger)
	gs := services.NewGameService(rm, c.SeedNPCs, logger)
	hs := services.NewHealthService(rm, logger)

	hsrv := httpapi.NewServer(httpapi.Options{
		Address:     c.EndpointAddrHTTP,
		Debug:       c.Debug,
		CORSOrigins: c.CORSOrigins,
	}, logger, cs, ss, gs, hs)

	return &App{
		config:      c,
		logger:      logger,
		closeLogger: closeLogger,
		repomanager: rm,
		httpServer:  hsrv,
	}, nil
}

func newLogger(c *config.Config) (logging.Logger, func() error) {
	if c.LogBackend == "zap" {
		return logging.NewProductionZapLogger(logging.ZapOptions{
			Level:      c.LogLevel,
			File:       c.LogFile,
			MaxSizeMB:  100,
			MaxBackups: 3,
		})
	}
	return logging.NewJSONSlogLogger(os.Stdout, c.LogLevel), func() error { return nil }
}

func newRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.Storage == config.StorageMemory {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	var opts []repomanager.Option
	if c.SavesBackend == config.SavesS3 {
		client, err := saves.NewS3Client(ctx, saves.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, repomanager.WithSavesRepository(saves.NewS3Repository(client, c.S3Bucket)))
	}

	pool := database.NewPool(c.DatabaseDSN, c.DBMinConns, c.DBMaxConns)
	return repomanager.NewPostgresRepositoryManager(pool, opts...), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives, then
// stops the HTTP server and releases the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage, "saves", app.config.SavesBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.closeLogger()
}
