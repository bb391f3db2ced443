package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/scheduler"
	pkgcache "StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/postgres"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	pool       *postgres.Pool
	cache      pkgcache.Service
	handler    xhttp.Handler
	sched      *scheduler.Scheduler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	pool *postgres.Pool,
	cache pkgcache.Service,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		cache:   cache,
		handler: handler,
		sched:   sched,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
	)

	if err := a.sched.Register(); err != nil {
		return err
	}
	a.sched.Start()

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops components in reverse start order. The scheduler stops
// first so no sweep runs against closing connections.
func (a *App) shutdown() error {
	a.sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Warn("http server stop error", applogger.Error(err))
	}

	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.pool.Close()
	a.logger.Info("application stopped")
	return nil
}
