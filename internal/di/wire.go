//go:build wireinject
// +build wireinject

package di

import (
	"SectorPulse/pkg/config"
	"SectorPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Persistence and subscriber sources
		ProvideStateStore,
		ProvideState,
		ProvideDedup,
		ProvideRegistry,

		// External services
		ProvideMarketData,
		ProvideNotifier,
		ProvideComposer,
		ProvideSignalSink,

		// Use cases
		ProvideEvaluators,
		ProvideRegimeTracker,
		ProvideDigestScheduler,
		ProvidePass,
		ProvideFanout,

		// Ops surface
		ProvideHub,
		ProvideStatusHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
