//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"NewsSignal/internal/usecase"
	"NewsSignal/pkg/config"
	"NewsSignal/pkg/server"
)

var modelSet = wire.NewSet(
	ProvideRedis,
	ProvideArtifactSource,
	ProvideBundle,
	ProvideStopwords,
	ProvideStemmer,
	ProvidePipeline,
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideRegistry,
		ProvideMetrics,
		ProvideKafkaProducer,
		ProvideLogger,

		modelSet,
		ProvideLanguageDetector,

		ProvideClickHouseClient,
		ProvidePredictionStore,
		ProvidePublisher,

		ProvidePredictionProcessor,
		ProvideRealtimePipeline,
		ProvideHeadlineCollector,
		ProvideFeedPoller,
		ProvideKafkaConsumer,

		ProvideResponseCache,
		ProvideRateLimiter,
		ProvidePredictHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}

// InitializePipeline builds only the prediction pipeline, for offline tools.
func InitializePipeline(cfg *config.Config) (*usecase.Pipeline, func(), error) {
	wire.Build(modelSet)
	return nil, nil, nil
}
