package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"NewsSignal/internal/domain/repository"
	"NewsSignal/internal/handler/api"
	mid "NewsSignal/internal/middleware"
	internalrepo "NewsSignal/internal/repository"
	"NewsSignal/internal/service/cache"
	"NewsSignal/internal/service/finnhub"
	"NewsSignal/internal/service/lang"
	apimetrics "NewsSignal/internal/service/metrics"
	"NewsSignal/internal/service/ratelimit"
	"NewsSignal/internal/services/model"
	"NewsSignal/internal/textproc"
	"NewsSignal/internal/usecase"
	pkgch "NewsSignal/pkg/clickhouse"
	"NewsSignal/pkg/config"
	xhttp "NewsSignal/pkg/http"
	pkgkafka "NewsSignal/pkg/kafka"
	"NewsSignal/pkg/logger"
	"NewsSignal/pkg/metrics"
	"NewsSignal/pkg/server"
)

// ProvideRegistry creates the registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	apimetrics.Register(reg)
	return reg
}

// ProvideMetrics creates the Prometheus recorder for the domain Metrics port.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideKafkaProducer creates a producer when brokers are configured, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the service logger and, when a collector topic is set,
// ships aggregated warn/error logs through the Kafka producer.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.CollectorTopic != "" && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Logging.CollectorInterval,
			CountThreshold: cfg.Logging.CollectorThreshold,
			Topic:          cfg.Logging.CollectorTopic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideRedis returns a client when redis.addr is set, nil otherwise.
func ProvideRedis(cfg *config.Config) (redis.UniversalClient, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}
	cli := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cli, func() { _ = cli.Close() }
}

// ProvideArtifactSource reads artifacts from files, http(s) or redis keys.
func ProvideArtifactSource(cfg *config.Config, rdb redis.UniversalClient) *model.Source {
	opts := []model.SourceOption{
		model.WithHTTPClient(xhttp.NewClient(
			xhttp.WithTimeout(cfg.Model.LoadTimeout),
			xhttp.WithRetries(cfg.Model.HTTPRetries, 0),
		)),
	}
	if rdb != nil {
		opts = append(opts, model.WithRedis(rdb))
	}
	return model.NewSource(opts...)
}

// ProvideBundle loads and cross-checks the vectorizer and classifier.
func ProvideBundle(cfg *config.Config, src *model.Source) (*model.Bundle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.LoadTimeout)
	defer cancel()
	return src.LoadBundle(ctx, cfg.Model.Vectorizer, cfg.Model.Classifier)
}

// ProvideStopwords loads text.stopwords_path or the embedded English list.
func ProvideStopwords(cfg *config.Config) (*textproc.StopwordSet, error) {
	if cfg.Text.StopwordsPath != "" {
		return textproc.LoadStopwords(cfg.Text.StopwordsPath)
	}
	return textproc.DefaultStopwords()
}

// ProvideStemmer selects the stemmer mode.
func ProvideStemmer(cfg *config.Config) (textproc.Stemmer, error) {
	return textproc.NewStemmer(cfg.Text.Stemmer)
}

// ProvidePipeline builds the long-lived prediction pipeline.
func ProvidePipeline(cfg *config.Config, stop *textproc.StopwordSet, stem textproc.Stemmer, bundle *model.Bundle) (*usecase.Pipeline, error) {
	return usecase.NewPipeline(stop, stem, bundle, usecase.WithUpClass(cfg.UpClassValue()))
}

// ProvideLanguageDetector creates the whatlanggo-backed detector.
func ProvideLanguageDetector(cfg *config.Config) *lang.Detector {
	return lang.NewDetector(cfg.Language.MinConfidence)
}

// ProvideClickHouseClient connects only when the clickhouse backend is selected.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.Backend.Type != usecase.BackendClickHouse {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout)
	defer cancel()
	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvidePredictionStore creates and initialises the audit store for the backend.
func ProvidePredictionStore(cfg *config.Config, ch *pkgch.Client, log *logger.Logger) (repository.PredictionStore, error) {
	var store repository.PredictionStore
	switch cfg.Backend.Type {
	case usecase.BackendClickHouse:
		store = internalrepo.NewClickHouseStore(ch, cfg.ClickHouse.Table, log)
	case usecase.BackendSQLite:
		s, err := internalrepo.NewSQLiteStore(cfg.SQLite.Path, cfg.SQLite.Table)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		store = s
	default:
		return internalrepo.NewNoopStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.LoadTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init %s store: %w", cfg.Backend.Type, err)
	}
	return store, nil
}

// ProvidePublisher returns the Kafka publisher for the kafka backend, nil otherwise.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if cfg.Backend.Type != usecase.BackendKafka || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PredictionsTopic)
}

// ProvidePredictionProcessor scores streamed headlines and routes the audit records.
func ProvidePredictionProcessor(
	cfg *config.Config,
	pipeline *usecase.Pipeline,
	detector *lang.Detector,
	pub repository.Publisher,
	store repository.PredictionStore,
	m repository.Metrics,
) *usecase.PredictionProcessor {
	return usecase.NewPredictionProcessor(pipeline, detector, pub, store, m, cfg.Backend.Type)
}

// ProvideRealtimePipeline sits between every headline source and the processor.
func ProvideRealtimePipeline(cfg *config.Config, proc *usecase.PredictionProcessor, m repository.Metrics) *mid.RealtimePipeline {
	return mid.NewRealtimePipeline(proc, m,
		mid.WithMaxRPS(cfg.Pipeline.MaxRPS),
		mid.WithBufferSize(cfg.Pipeline.BufferSize),
		mid.WithDedupWindow(cfg.Pipeline.DedupWindow),
	)
}

// ProvideHeadlineCollector streams Finnhub news when enabled.
func ProvideHeadlineCollector(
	cfg *config.Config,
	proc *usecase.PredictionProcessor,
	pipe *mid.RealtimePipeline,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.HeadlineCollector {
	if !cfg.Finnhub.Enabled {
		return nil
	}
	stream := finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		log,
	)
	return usecase.NewHeadlineCollector(stream, proc, m, pipe, log)
}

// ProvideFeedPoller polls RSS feeds when any are configured.
func ProvideFeedPoller(cfg *config.Config, pipe *mid.RealtimePipeline, m repository.Metrics, log *logger.Logger) *usecase.FeedPoller {
	if len(cfg.RSS.Feeds) == 0 {
		return nil
	}
	return usecase.NewFeedPoller(cfg.RSS.Feeds, pipe, m, log, cfg.RSS.Timeout)
}

// ProvideKafkaConsumer consumes the headline topic when enabled.
func ProvideKafkaConsumer(
	cfg *config.Config,
	pipe *mid.RealtimePipeline,
	m repository.Metrics,
	log *logger.Logger,
	reg *prometheus.Registry,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.ConsumeHeadlines {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerStartOffset(c.StartOffset),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerLogger(log),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook{},
		pkgkafka.LoggingHook{Log: log, Slow: cfg.Server.SlowThreshold},
	))
	consumer.RegisterHandler(usecase.NewKafkaHeadlinesHandler(cfg.Kafka.HeadlinesTopic, pipe, m))
	return consumer, nil
}

// ProvideResponseCache layers an in-memory TTL cache over redis when redis is
// configured, otherwise the TTL cache is used alone.
func ProvideResponseCache(cfg *config.Config, rdb redis.UniversalClient) cache.BytesCache {
	local := cache.NewTTLCache(cfg.Cache.MaxEntries)
	if rdb != nil {
		return cache.NewLayered(local, cache.NewRedisCache(rdb, cfg.Cache.Prefix), time.Minute)
	}
	return local
}

// ProvideRateLimiter creates the per-client token bucket for the predict API.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

var errStreamDisconnected = errors.New("headline stream disconnected")

// ProvidePredictHandler wires the HTTP API. Readiness fails while the store
// is unreachable or the live headline stream is down.
func ProvidePredictHandler(
	cfg *config.Config,
	log *logger.Logger,
	pipeline *usecase.Pipeline,
	detector *lang.Detector,
	m repository.Metrics,
	store repository.PredictionStore,
	respCache cache.BytesCache,
	limiter *ratelimit.Limiter,
	collector *usecase.HeadlineCollector,
) *api.PredictHandler {
	ready := func(ctx context.Context) error {
		if err := store.Health(ctx); err != nil {
			return err
		}
		if collector != nil && !collector.IsConnected() {
			return errStreamDisconnected
		}
		return nil
	}
	opts := []api.PredictOption{
		api.WithCache(respCache, cfg.Cache.TTL),
		api.WithRateLimiter(limiter),
		api.WithReadiness(ready),
	}
	if cfg.Backend.Type == usecase.BackendClickHouse || cfg.Backend.Type == usecase.BackendSQLite {
		opts = append(opts, api.WithStore(store))
	}
	return api.NewPredictHandler(log, pipeline, detector, m, opts...)
}

// ProvideHTTPServer creates the echo server with /metrics on the service registry.
func ProvideHTTPServer(cfg *config.Config, log *logger.Logger, reg *prometheus.Registry, h *api.PredictHandler) *xhttp.Server {
	return xhttp.NewServer(log, []xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins),
		xhttp.WithMetrics(cfg.Metrics.Path, reg, reg),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	proc *usecase.PredictionProcessor,
	pipe *mid.RealtimePipeline,
	collector *usecase.HeadlineCollector,
	poller *usecase.FeedPoller,
	consumer *pkgkafka.Consumer,
) *server.App {
	return server.New(cfg, log, srv, proc, pipe, collector, poller, consumer)
}
