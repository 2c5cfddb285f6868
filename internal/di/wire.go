//go:build wireinject
// +build wireinject

package di

import (
	"SignalForge/pkg/config"
	"SignalForge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideSeriesCache,

		// Repositories
		ProvideSignalStore,
		ProvideSignalPublisher,
		ProvideSeriesSource,

		// Domain services and use cases
		ProvideOracle,
		ProvideGenerator,
		ProvideSignalSink,
		ProvideBatchGenerator,
		ProvideTickers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
