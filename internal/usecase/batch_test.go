package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/services/detectors"
	"SignalForge/internal/services/markethours"
	"SignalForge/pkg/util"
)

type fakeSource struct {
	series map[string]models.Series
	errs   map[string]error
}

func (f *fakeSource) FetchSeries(ctx context.Context, t models.Ticker, tf domrepo.Timeframe, limit int) (models.Series, error) {
	if err := f.errs[t.Symbol]; err != nil {
		return nil, err
	}
	return f.series[t.Symbol], nil
}

type fakeStore struct {
	replacedIDs     []int64
	replacedSignals []models.Signal
	purgeCutoff     time.Time
	purgeCount      int64
}

func (f *fakeStore) Replace(ctx context.Context, tickerIDs []int64, signals []models.Signal) error {
	f.replacedIDs = tickerIDs
	f.replacedSignals = signals
	return nil
}
func (f *fakeStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.purgeCutoff = cutoff
	return f.purgeCount, nil
}
func (f *fakeStore) Close() error { return nil }

func newBatch(t *testing.T, src domrepo.SeriesSource, store domrepo.SignalStore) (*BatchGenerator, *fakeMetrics) {
	t.Helper()
	metrics := newFakeMetrics()
	log := quietLogger(t)
	gen := NewGenerator(markethours.NewOracle(nil), log, metrics, detectors.Options{})
	sink := NewSignalSink(store, nil, metrics, "clickhouse")
	b := NewBatchGenerator(src, sink, gen, log, metrics, BatchConfig{
		Workers:       2,
		RetentionDays: 10,
		Lookback:      100,
		Timeframe:     domrepo.TF1d,
	})
	return b, metrics
}

func TestGenerateBatch(t *testing.T) {
	flat := make(models.Series, 60)
	end := util.DateUTC(time.Now()).AddDate(0, 0, -1)
	for i := range flat {
		flat[i] = models.Candle{Timestamp: end.AddDate(0, 0, i-59), Open: 100, Close: 100, Volume: 1000}
	}

	src := &fakeSource{
		series: map[string]models.Series{
			"GOOD": confirmedBuyFixture(),
			"FLAT": flat,
		},
		errs: map[string]error{
			"BAD": errors.New("provider unavailable"),
		},
	}
	store := &fakeStore{purgeCount: 3}
	b, _ := newBatch(t, src, store)

	tickers := []models.Ticker{
		{ID: 1, Symbol: "GOOD", Exchange: "NASDAQ", MarketType: models.MarketStock, Active: true},
		{ID: 2, Symbol: "FLAT", Exchange: "NYSE", MarketType: models.MarketStock, Active: true},
		{ID: 3, Symbol: "BAD", Exchange: "NYSE", MarketType: models.MarketStock, Active: true},
		{ID: 4, Symbol: "OFF", Exchange: "NYSE", MarketType: models.MarketStock, Active: false},
	}

	res, err := b.GenerateBatch(context.Background(), tickers, detectors.ModeConfirmedBuy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Processed != 3 {
		t.Errorf("processed = %d, want 3 (inactive skipped)", res.Processed)
	}
	if res.Generated != 1 || res.Persisted != 1 {
		t.Errorf("generated/persisted = %d/%d, want 1/1", res.Generated, res.Persisted)
	}
	if _, ok := res.Errors["BAD"]; !ok {
		t.Errorf("expected the failing ticker recorded, got %v", res.Errors)
	}
	if res.Purged != 3 {
		t.Errorf("purged = %d, want 3", res.Purged)
	}

	// Supersede covers every successfully processed ticker, signal or not.
	if len(store.replacedIDs) != 2 {
		t.Fatalf("replaced ids = %v, want the two healthy tickers", store.replacedIDs)
	}
	for _, id := range store.replacedIDs {
		if id != 1 && id != 2 {
			t.Errorf("unexpected superseded ticker id %d", id)
		}
	}
	if len(store.replacedSignals) != 1 || store.replacedSignals[0].Symbol != "GOOD" {
		t.Errorf("persisted signals = %v", store.replacedSignals)
	}

	wantCutoff := util.DateUTC(time.Now()).AddDate(0, 0, -10)
	if !store.purgeCutoff.Equal(wantCutoff) {
		t.Errorf("purge cutoff = %v, want %v", store.purgeCutoff, wantCutoff)
	}
}

func TestDedupSignals(t *testing.T) {
	day := time.Date(2024, 10, 9, 0, 0, 0, 0, time.UTC)
	in := []models.Signal{
		{TickerID: 1, Symbol: "A", SignalDate: day, Detector: "weak", Confidence: 0.5},
		{TickerID: 1, Symbol: "A", SignalDate: day, Detector: "strong", Confidence: 0.95},
		{TickerID: 1, Symbol: "A", SignalDate: day.AddDate(0, 0, -1), Detector: "weak", Confidence: 0.5},
		{TickerID: 2, Symbol: "B", SignalDate: day, Detector: "weak", Confidence: 0.5},
	}

	out := dedupSignals(in)
	if len(out) != 3 {
		t.Fatalf("deduped to %d signals, want 3", len(out))
	}
	for _, s := range out {
		if s.TickerID == 1 && s.SignalDate.Equal(day) && s.Detector != "strong" {
			t.Errorf("highest confidence must win, kept %q", s.Detector)
		}
	}
}

func TestDedupSignalsTieLaterWins(t *testing.T) {
	day := time.Date(2024, 10, 9, 0, 0, 0, 0, time.UTC)
	in := []models.Signal{
		{TickerID: 1, Symbol: "A", SignalDate: day, Detector: "first", Confidence: 0.7},
		{TickerID: 1, Symbol: "A", SignalDate: day, Detector: "second", Confidence: 0.7},
	}
	out := dedupSignals(in)
	if len(out) != 1 || out[0].Detector != "second" {
		t.Fatalf("tie must keep the later signal, got %v", out)
	}
}
