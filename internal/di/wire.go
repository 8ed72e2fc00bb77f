//go:build wireinject
// +build wireinject

package di

import (
	"SmartRental/pkg/config"
	"SmartRental/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Artifact and ledger stores
		ProvideArtifactSource,
		ProvideArtifactLoader,
		ProvideLedgerSource,
		ProvideAlertPublisher,

		// Snapshot and use cases
		ProvideSnapshotHolder,
		ProvideSnapshotLoader,
		ProvideFleetService,

		// HTTP
		ProvideResponseCache,
		ProvideLimiter,
		ProvideFleetHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
