package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
)

// ClickHouseSignalStore implements SignalStore on ClickHouse. The table
// uses ReplacingMergeTree keyed on (ticker_id, signal_date), so the
// at-most-one-per-day invariant also holds at the storage layer after
// merges.
type ClickHouseSignalStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSignalStore creates ClickHouse signal storage.
func NewClickHouseSignalStore(db *sql.DB, table string) repository.SignalStore {
	return &ClickHouseSignalStore{db: db, table: table}
}

// SchemaStatements returns the DDL for the signals table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	ticker_id Int64,
	symbol String,
	exchange String,
	market_type String,
	signal_type String,
	signal_strength String,
	confidence Float64,
	detector String,
	price Float64,
	volume Float64,
	signal_date Date,
	generated_at DateTime,
	details String
) ENGINE = ReplacingMergeTree(generated_at)
ORDER BY (ticker_id, signal_date)`, table)}
}

// Replace supersedes previously stored signals for the given tickers and
// inserts the new batch. The delete is a ClickHouse mutation and completes
// asynchronously; the ReplacingMergeTree key covers the window until it
// lands.
func (s *ClickHouseSignalStore) Replace(ctx context.Context, tickerIDs []int64, signals []models.Signal) error {
	if len(tickerIDs) > 0 {
		placeholders := make([]string, len(tickerIDs))
		args := make([]interface{}, len(tickerIDs))
		for i, id := range tickerIDs {
			placeholders[i] = "?"
			args[i] = id
		}
		q := fmt.Sprintf("ALTER TABLE %s DELETE WHERE ticker_id IN (%s)", s.table, strings.Join(placeholders, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("supersede tickers: %w", err)
		}
	}
	return s.insertBatch(ctx, signals)
}

func (s *ClickHouseSignalStore) insertBatch(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(signals); start += chunkSize {
		end := start + chunkSize
		if end > len(signals) {
			end = len(signals)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*13)
		for _, sig := range signals[start:end] {
			if sig.Symbol == "" || sig.SignalDate.IsZero() {
				continue
			}
			details, err := json.Marshal(sig.Details)
			if err != nil {
				return fmt.Errorf("marshal details for %s: %w", sig.Symbol, err)
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				sig.TickerID,
				sig.Symbol,
				sig.Exchange,
				string(sig.MarketType),
				string(sig.Type),
				string(sig.Strength),
				sig.Confidence,
				sig.Detector,
				sig.Price,
				sig.Volume,
				sig.SignalDate,
				sig.GeneratedAt,
				string(details),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ticker_id, symbol, exchange, market_type, signal_type, signal_strength, confidence, detector, price, volume, signal_date, generated_at, details) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// DeleteOlderThan counts and then removes signals dated before cutoff.
func (s *ClickHouseSignalStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	countQ := fmt.Sprintf("SELECT count() FROM %s WHERE signal_date < ?", s.table)
	if err := s.db.QueryRowContext(ctx, countQ, cutoff).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stale signals: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	q := fmt.Sprintf("ALTER TABLE %s DELETE WHERE signal_date < ?", s.table)
	if _, err := s.db.ExecContext(ctx, q, cutoff); err != nil {
		return 0, fmt.Errorf("delete stale signals: %w", err)
	}
	return n, nil
}

func (s *ClickHouseSignalStore) Close() error {
	return nil // Managed by pkg
}
