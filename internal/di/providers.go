package di

import (
	"context"
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	internalrepo "SignalForge/internal/repository"
	"SignalForge/internal/service/binance"
	"SignalForge/internal/service/cache"
	"SignalForge/internal/service/finnhub"
	"SignalForge/internal/service/marketdata"
	"SignalForge/internal/services/detectors"
	"SignalForge/internal/services/markethours"
	"SignalForge/internal/usecase"
	pkgch "SignalForge/pkg/clickhouse"
	"SignalForge/pkg/config"
	pkgkafka "SignalForge/pkg/kafka"
	"SignalForge/pkg/logger"
	"SignalForge/pkg/metrics"
	"SignalForge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// signals schema exists. On the kafka backend no client is built.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != "clickhouse" {
		return nil, nil
	}

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

	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.SchemaStatements(signalsTable(cfg))...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. On the clickhouse
// backend no producer is built.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}

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

// ProvideSignalStore creates ClickHouse signal storage, nil on the kafka
// backend.
func ProvideSignalStore(chClient *pkgch.Client, cfg *config.Config) domrepo.SignalStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseSignalStore(chClient.DB(), signalsTable(cfg))
}

// ProvideSignalPublisher creates the Kafka publisher, nil on the
// clickhouse backend.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSeriesCache picks Redis when enabled, an in-process TTL cache
// otherwise.
func ProvideSeriesCache(cfg *config.Config) cache.BytesCache {
	if cfg.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideOracle builds the market-hours oracle. Configured sessions are
// overlaid on the built-in table.
func ProvideOracle(cfg *config.Config) *markethours.Oracle {
	table := markethours.DefaultTable()
	for exchange, h := range cfg.Markets {
		table[exchange] = markethours.Hours{
			Timezone: h.Timezone,
			Open:     h.Open,
			Close:    h.Close,
		}
	}
	return markethours.NewOracle(table)
}

// ProvideSeriesSource composes the provider clients behind one router.
func ProvideSeriesSource(cfg *config.Config, log *logger.Logger, bc cache.BytesCache) domrepo.SeriesSource {
	crypto := binance.NewClient(log,
		binance.WithBaseURL(cfg.Binance.BaseURL),
		binance.WithCache(bc, cfg.Binance.CacheTTL),
		binance.WithRateLimit(cfg.Binance.RateCapacity, cfg.Binance.RatePerSec),
	)

	var stocks domrepo.SeriesSource
	if cfg.Finnhub.APIKey != "" {
		stocks = finnhub.NewClient(cfg.Finnhub.APIKey, log,
			finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
			finnhub.WithCache(bc, cfg.Finnhub.CacheTTL),
			finnhub.WithRateLimit(cfg.Finnhub.RateCapacity, cfg.Finnhub.RatePerSec),
		)
	}

	return marketdata.NewRouter(stocks, crypto)
}

// ProvideGenerator creates the per-ticker signal generator.
func ProvideGenerator(
	oracle *markethours.Oracle,
	log *logger.Logger,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.Generator {
	return usecase.NewGenerator(oracle, log, m, detectors.Options{
		AllowUnconfirmedVolume: cfg.Generator.AllowUnconfirmedVolume,
	})
}

// ProvideSignalSink creates the backend-switching sink.
func ProvideSignalSink(
	store domrepo.SignalStore,
	pub domrepo.SignalPublisher,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.SignalSink {
	return usecase.NewSignalSink(store, pub, m, cfg.Backend.Type)
}

// ProvideBatchGenerator creates the batch coordinator.
func ProvideBatchGenerator(
	src domrepo.SeriesSource,
	sink *usecase.SignalSink,
	gen *usecase.Generator,
	log *logger.Logger,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.BatchGenerator {
	return usecase.NewBatchGenerator(src, sink, gen, log, m, usecase.BatchConfig{
		Workers:       cfg.Generator.Workers,
		RetentionDays: cfg.Generator.RetentionDays,
		Lookback:      cfg.Generator.LookbackCandles,
		Timeframe:     domrepo.Timeframe(cfg.Generator.Timeframe),
	})
}

// ProvideTickers converts the configured universe into domain tickers.
// Inactive tickers are kept; the batch coordinator skips them.
func ProvideTickers(cfg *config.Config) []models.Ticker {
	tickers := make([]models.Ticker, 0, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		tickers = append(tickers, models.Ticker{
			ID:         t.ID,
			Symbol:     t.Symbol,
			Name:       t.Name,
			Exchange:   t.Exchange,
			MarketType: models.MarketType(t.MarketType),
			QuoteAsset: t.QuoteAsset,
			Active:     t.IsActive(),
		})
	}
	return tickers
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	batch *usecase.BatchGenerator,
	sink *usecase.SignalSink,
	chClient *pkgch.Client,
	tickers []models.Ticker,
) *server.App {
	return server.New(cfg, log, batch, sink, chClient, tickers)
}

func signalsTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
}
