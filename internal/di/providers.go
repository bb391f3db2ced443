package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/scheduler"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/provider"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/postgres"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePool creates the Postgres pool and initializes the schema.
func ProvidePool(cfg *config.Config) (*postgres.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.Timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	if err := internalrepo.InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return pool, nil
}

// ProvideCacheService creates the Redis-backed cache service.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis port: %w", err)
	}

	svc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPool(10, 2, 5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return svc, nil
}

// ProvidePriceCache creates the namespaced price cache.
func ProvidePriceCache(svc pkgcache.Service, cfg *config.Config) *icache.PriceCache {
	return icache.New(svc, icache.WithTTLs(
		cfg.Cache.WriteAheadTTL,
		cfg.Cache.ReadThroughTTL,
		cfg.Cache.SearchTTL,
	))
}

// ProvidePriceStore creates the durable store repository.
func ProvidePriceStore(pool *postgres.Pool) repository.PriceStore {
	return internalrepo.NewPostgresPriceStore(pool)
}

// ProvideRemoteProvider creates the market data client with its retry policy.
func ProvideRemoteProvider(cfg *config.Config, logger *applogger.Logger) repository.RemoteProvider {
	inner := provider.NewHTTPProvider(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout)
	return provider.NewRetrying(inner, provider.RetryConfig{
		Attempts:  cfg.Provider.Attempts,
		BaseDelay: cfg.Provider.BaseDelay,
		MaxDelay:  cfg.Provider.MaxDelay,
	}, logger)
}

// ProvideDataAccess creates the tiered read coordinator.
func ProvideDataAccess(
	store repository.PriceStore,
	remote repository.RemoteProvider,
	cache *icache.PriceCache,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.DataAccess {
	return usecase.NewDataAccess(store, remote, cache, m, logger)
}

// ProvidePersister creates the write-back persister.
func ProvidePersister(
	store repository.PriceStore,
	cache *icache.PriceCache,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.Persister {
	return usecase.NewPersister(store, cache, m, logger)
}

// ProvideSymbolSearch creates the symbol search use case.
func ProvideSymbolSearch(
	store repository.PriceStore,
	svc pkgcache.Service,
	cfg *config.Config,
	logger *applogger.Logger,
) *usecase.SymbolSearch {
	return usecase.NewSymbolSearch(store, svc, cfg.Cache.SearchTTL, logger)
}

// ProvideScheduler creates the persistence scheduler.
func ProvideScheduler(p *usecase.Persister, cfg *config.Config, logger *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(p, cfg.Scheduler.PersistInterval, logger)
}

// ProvideHandler creates the HTTP route handler.
func ProvideHandler(
	logger *applogger.Logger,
	access *usecase.DataAccess,
	persister *usecase.Persister,
	search *usecase.SymbolSearch,
	cache *icache.PriceCache,
	pool *postgres.Pool,
) xhttp.Handler {
	return api.NewStocksEchoHandler(logger, access, persister, search, cache, pool)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	pool *postgres.Pool,
	svc pkgcache.Service,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
) *server.App {
	return server.New(cfg, logger, pool, svc, handler, sched)
}
