//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/saiuppala9/ai-forex-trader/pkg/config"
	"github.com/saiuppala9/ai-forex-trader/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideHistoryStore,
		ProvideSignalArchive,
		ProvideCandleStore,
		ProvideQuoteSink,
		ProvideSignalPublisher,
		ProvideQuotePublisher,
		ProvideMarketStream,

		// Analyzer + use cases
		ProvideAnalyzer,
		ProvideQuoteProcessor,
		ProvideQuoteCollector,
		ProvideConsensusUseCase,
		ProvideHistoryUseCase,
		ProvideKafkaSignalsHandler,

		// HTTP + application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
