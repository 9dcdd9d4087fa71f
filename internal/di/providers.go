package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/domain/service"
	"github.com/saiuppala9/ai-forex-trader/internal/handler/api"
	mid "github.com/saiuppala9/ai-forex-trader/internal/middleware"
	internalrepo "github.com/saiuppala9/ai-forex-trader/internal/repository"
	"github.com/saiuppala9/ai-forex-trader/internal/service/analyzer"
	icache "github.com/saiuppala9/ai-forex-trader/internal/service/cache"
	"github.com/saiuppala9/ai-forex-trader/internal/service/marketdata"
	"github.com/saiuppala9/ai-forex-trader/internal/usecase"
	pkgcache "github.com/saiuppala9/ai-forex-trader/pkg/cache"
	pkgch "github.com/saiuppala9/ai-forex-trader/pkg/clickhouse"
	"github.com/saiuppala9/ai-forex-trader/pkg/config"
	pkgkafka "github.com/saiuppala9/ai-forex-trader/pkg/kafka"
	applogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
	"github.com/saiuppala9/ai-forex-trader/pkg/metrics"
	"github.com/saiuppala9/ai-forex-trader/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the candle, quote and archive schemas.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := internalrepo.CandleSchema()
	stmts = append(stmts, internalrepo.QuoteSchema("")...)
	stmts = append(stmts, internalrepo.ArchiveSchema()...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHistoryStore picks Redis-backed history when configured, the
// in-process store otherwise.
func ProvideHistoryStore(cfg *config.Config, l *applogger.Logger) repository.HistoryStore {
	depth := cfg.Consensus.HistoryDepth
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return internalrepo.NewRedisHistory(client, l, internalrepo.WithRedisHistoryDepth(depth))
	}
	return internalrepo.NewMemoryHistory(internalrepo.WithHistoryDepth(depth))
}

// ProvideSignalArchive creates the ClickHouse consensus archive.
func ProvideSignalArchive(chClient *pkgch.Client, l *applogger.Logger) repository.SignalArchive {
	return internalrepo.NewCHSignalArchive(chClient, l)
}

// ProvideCandleStore creates the ClickHouse candle reader.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	return internalrepo.NewCHCandleStore(chClient, l)
}

// ProvideQuoteSink creates ClickHouse raw quote storage.
func ProvideQuoteSink(chClient *pkgch.Client) repository.QuoteSink {
	return internalrepo.NewCHQuoteSink(chClient, "")
}

// ProvideSignalPublisher creates the Kafka consensus publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideQuotePublisher creates the Kafka quote publisher.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) usecase.QuotePublisher {
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.QuotesTopic)
}

// ProvideMarketStream creates the quote WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketdata.New(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideAnalyzer picks the per-timeframe analyzer implementation.
func ProvideAnalyzer(cfg *config.Config, candles repository.CandleStore, l *applogger.Logger) service.TimeframeAnalyzer {
	if cfg.Analyzer.Mode == "remote" {
		opts := []analyzer.RemoteOption{}
		if cfg.Analyzer.Timeout > 0 {
			opts = append(opts, analyzer.WithRemoteTimeout(cfg.Analyzer.Timeout))
		}
		if cfg.Analyzer.Attempts > 0 {
			opts = append(opts, analyzer.WithRemoteAttempts(cfg.Analyzer.Attempts))
		}
		return analyzer.NewRemote(cfg.Analyzer.ServiceURL, l, opts...)
	}
	topts := []analyzer.TechnicalOption{}
	if cfg.Analyzer.CandleCount > 0 {
		topts = append(topts, analyzer.WithCandleCount(cfg.Analyzer.CandleCount))
	}
	return analyzer.NewTechnical(candles, l, topts...)
}

// ProvideQuoteProcessor creates the quote processor use case.
func ProvideQuoteProcessor(
	pub usecase.QuotePublisher,
	sink repository.QuoteSink,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(pub, sink, m, cfg.Backend.Type)
}

// ProvideQuoteCollector creates the quote collector with its pipeline.
func ProvideQuoteCollector(
	stream repository.MarketStream,
	processor *usecase.QuoteProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.QuoteCollector {
	pipeOpts := []mid.PipelineOption{}
	if cfg.MarketData.MaxRPS > 0 {
		pipeOpts = append(pipeOpts, mid.WithMaxRPS(cfg.MarketData.MaxRPS))
	}
	if cfg.MarketData.BufferSize > 0 {
		pipeOpts = append(pipeOpts, mid.WithBufferSize(cfg.MarketData.BufferSize))
	}
	pipe := mid.NewQuotePipeline(processor, m, pipeOpts...)
	return usecase.NewQuoteCollector(stream, processor, m, pipe)
}

// ProvideConsensusUseCase wires the multi-timeframe consensus engine.
func ProvideConsensusUseCase(
	a service.TimeframeAnalyzer,
	collector *usecase.QuoteCollector,
	history repository.HistoryStore,
	pub repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ConsensusUseCase {
	opts := []usecase.ConsensusOption{usecase.WithPublisher(pub)}
	if cfg.Consensus.AnalysisTimeout > 0 {
		opts = append(opts, usecase.WithAnalysisTimeout(cfg.Consensus.AnalysisTimeout))
	}
	return usecase.NewConsensusUseCase(a, collector, history, m, l, opts...)
}

// ProvideHistoryUseCase wires the history reader.
func ProvideHistoryUseCase(store repository.HistoryStore, archive repository.SignalArchive) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(store, archive)
}

// ProvideKafkaSignalsHandler registers the archive handler for the signals topic.
func ProvideKafkaSignalsHandler(archive repository.SignalArchive, m repository.Metrics, cfg *config.Config) *usecase.KafkaSignalsHandler {
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.SignalsTopic, archive, m)
}

// ProvideHTTPHandler builds the Echo API handler with its response cache.
func ProvideHTTPHandler(
	l *applogger.Logger,
	consensus *usecase.ConsensusUseCase,
	history *usecase.HistoryUseCase,
	collector *usecase.QuoteCollector,
	cfg *config.Config,
) *api.AnalysisEchoHandler {
	h := api.NewAnalysisEchoHandler(l, consensus, history, collector)
	h.SetCache(icache.NewServiceBytes(provideCacheService(cfg, l)))
	h.SetCacheTTL(cfg.Consensus.CacheTTL)
	return h
}

// provideCacheService builds the response cache backend: a layered
// memory+Redis cache when Redis is enabled, memory-only otherwise.
func provideCacheService(cfg *config.Config, l *applogger.Logger) pkgcache.Service {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache()
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		host = cfg.Redis.Addr
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		l.Warn("redis cache unavailable, using memory cache", applogger.Error(err))
		return pkgcache.NewMemoryCache()
	}
	return pkgcache.NewLayeredCache(rc)
}

// kafkaLogPublisher ships aggregated error logs through the shared producer.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	producer *pkgkafka.Producer,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSignalsHandler,
	chClient *pkgch.Client,
	handler *api.AnalysisEchoHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if producer != nil && cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if collector != nil {
		app.QuoteProc = collector.Processor()
	}
	return app
}
