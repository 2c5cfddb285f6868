package repository

import (
	"context"
	"time"

	"SignalForge/internal/domain/models"
)

// SeriesSource fetches historical candles for one instrument from a
// market-data provider.
type SeriesSource interface {
	FetchSeries(ctx context.Context, t models.Ticker, tf Timeframe, limit int) (models.Series, error)
}

// SignalStore persists generated signals and enforces the retention and
// supersede policy. The write path is the whole contract: reads happen
// downstream, straight against the storage backend.
type SignalStore interface {
	// Replace drops any existing signals for the given tickers and inserts
	// the new batch in their place.
	Replace(ctx context.Context, tickerIDs []int64, signals []models.Signal) error
	// DeleteOlderThan purges signals whose signal date is before cutoff and
	// reports how many rows were targeted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// SignalPublisher emits signals to a downstream consumer instead of, or in
// addition to, durable storage.
type SignalPublisher interface {
	Publish(ctx context.Context, s models.Signal) error
	PublishBatch(ctx context.Context, signals []models.Signal) error
	Close() error
}

type Metrics interface {
	RecordSignal(detector, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
