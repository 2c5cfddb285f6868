package usecase

import (
	"context"
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
)

// SignalSink routes finished signal batches to the configured backend:
// durable ClickHouse storage with the supersede/retention policy, or a
// Kafka topic for downstream consumers.
type SignalSink struct {
	store   domrepo.SignalStore
	pub     domrepo.SignalPublisher
	metrics domrepo.Metrics
	backend string
}

// NewSignalSink creates a new SignalSink instance.
func NewSignalSink(
	store domrepo.SignalStore,
	pub domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	backend string,
) *SignalSink {
	return &SignalSink{
		store:   store,
		pub:     pub,
		metrics: metrics,
		backend: backend,
	}
}

// Flush hands the batch to the backend. On the storage backend this
// supersedes any existing signals for the processed tickers; on the
// publish backend the batch is emitted as-is.
func (s *SignalSink) Flush(ctx context.Context, tickerIDs []int64, signals []models.Signal) error {
	if len(signals) == 0 && s.backend != "clickhouse" {
		return nil
	}

	start := time.Now()
	var err error

	switch s.backend {
	case "kafka":
		err = s.pub.PublishBatch(ctx, signals)
	case "clickhouse":
		err = s.store.Replace(ctx, tickerIDs, signals)
	default:
		err = fmt.Errorf("unknown backend: %s", s.backend)
	}

	if err != nil {
		s.metrics.RecordError("flush")
		return fmt.Errorf("flush signals: %w", err)
	}

	s.metrics.RecordLatency("flush", time.Since(start).Seconds())
	return nil
}

// PurgeOlderThan enforces the retention window. Only the storage backend
// retains anything, so the publish backend reports zero.
func (s *SignalSink) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.backend != "clickhouse" {
		return 0, nil
	}

	start := time.Now()
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.metrics.RecordError("purge")
		return 0, fmt.Errorf("purge signals: %w", err)
	}

	s.metrics.RecordLatency("purge", time.Since(start).Seconds())
	return n, nil
}

// Close closes underlying resources if available.
func (s *SignalSink) Close() {
	if s.pub != nil {
		_ = s.pub.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}
