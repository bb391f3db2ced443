//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePool,
		ProvideCacheService,
		ProvidePriceCache,

		// Repositories
		ProvidePriceStore,
		ProvideRemoteProvider,

		// Use cases
		ProvideDataAccess,
		ProvidePersister,
		ProvideSymbolSearch,

		// Delivery
		ProvideHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
