package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/services/detectors"
	"SignalForge/pkg/logger"
	"SignalForge/pkg/util"
)

// BatchGenerator drives a full pass over an instrument universe: fetch
// candles with bounded concurrency, generate signals per instrument,
// dedup, purge stale rows, and hand the batch to the sink.
type BatchGenerator struct {
	src       domrepo.SeriesSource
	sink      *SignalSink
	gen       *Generator
	log       *logger.Logger
	metrics   domrepo.Metrics
	workers   int
	retention time.Duration
	lookback  int
	timeframe domrepo.Timeframe
	now       func() time.Time
}

// BatchConfig tunes one BatchGenerator.
type BatchConfig struct {
	Workers       int
	RetentionDays int
	Lookback      int
	Timeframe     domrepo.Timeframe
}

// NewBatchGenerator creates a new BatchGenerator instance.
func NewBatchGenerator(
	src domrepo.SeriesSource,
	sink *SignalSink,
	gen *Generator,
	log *logger.Logger,
	metrics domrepo.Metrics,
	cfg BatchConfig,
) *BatchGenerator {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 100
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 10
	}
	return &BatchGenerator{
		src:       src,
		sink:      sink,
		gen:       gen,
		log:       log,
		metrics:   metrics,
		workers:   cfg.Workers,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		lookback:  cfg.Lookback,
		timeframe: domrepo.NormalizeTimeframe(string(cfg.Timeframe)),
		now:       time.Now,
	}
}

// BatchResult summarizes one pass.
type BatchResult struct {
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration"`
	Processed    int               `json:"processed"`
	Generated    int               `json:"generated"`
	Persisted    int               `json:"persisted"`
	Deduplicated int               `json:"deduplicated"`
	Purged       int64             `json:"purged"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// GenerateBatch runs one full pass. A failing instrument is recorded in
// the result and never aborts the rest of the batch; the returned error
// covers only the persistence handoff.
func (b *BatchGenerator) GenerateBatch(ctx context.Context, tickers []models.Ticker, mode detectors.Mode) (*BatchResult, error) {
	start := b.now()
	res := &BatchResult{
		StartedAt: start.UTC(),
		Errors:    map[string]string{},
	}

	b.log.Info("batch started",
		logger.Int("tickers", len(tickers)),
		logger.String("mode", string(mode)),
		logger.Int("workers", b.workers),
	)

	type item struct {
		symbol  string
		signals []models.Signal
		err     error
	}
	ch := make(chan item, len(tickers))
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for _, t := range tickers {
		if !t.Active {
			continue
		}
		wg.Add(1)
		go func(t models.Ticker) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			signals, err := b.processTicker(ctx, t, mode)
			ch <- item{symbol: t.Symbol, signals: signals, err: err}
		}(t)
	}

	go func() { wg.Wait(); close(ch) }()

	var all []models.Signal
	for it := range ch {
		res.Processed++
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			b.metrics.RecordError("ticker")
			continue
		}
		all = append(all, it.signals...)
	}

	// Every successfully processed ticker is superseded, signal or not.
	processedIDs := make([]int64, 0, len(tickers))
	for _, t := range tickers {
		if t.Active {
			if _, failed := res.Errors[t.Symbol]; !failed {
				processedIDs = append(processedIDs, t.ID)
			}
		}
	}

	res.Generated = len(all)
	deduped := dedupSignals(all)
	res.Deduplicated = len(all) - len(deduped)
	res.Persisted = len(deduped)

	cutoff := util.DateUTC(start).Add(-b.retention)
	purged, err := b.sink.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		b.log.Error("retention purge failed", logger.Error(err))
		res.Errors["_purge"] = err.Error()
	}
	res.Purged = purged

	if err := b.sink.Flush(ctx, processedIDs, deduped); err != nil {
		res.Duration = b.now().Sub(start)
		return res, fmt.Errorf("persist batch: %w", err)
	}

	res.Duration = b.now().Sub(start)
	if len(res.Errors) == 0 {
		res.Errors = nil
	}

	b.log.Info("batch finished",
		logger.Int("processed", res.Processed),
		logger.Int("generated", res.Generated),
		logger.Int("persisted", res.Persisted),
		logger.Int("deduplicated", res.Deduplicated),
		logger.Int64("purged", res.Purged),
		logger.Duration("duration", res.Duration),
	)
	b.metrics.RecordLatency("batch", res.Duration.Seconds())

	return res, nil
}

// processTicker fetches and analyzes one instrument behind a panic
// boundary.
func (b *BatchGenerator) processTicker(ctx context.Context, t models.Ticker, mode detectors.Mode) (signals []models.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signals = nil
			err = fmt.Errorf("ticker %s panicked: %v", t.Symbol, r)
		}
	}()

	series, err := b.src.FetchSeries(ctx, t, b.timeframe, b.lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.Symbol, err)
	}
	return b.gen.Generate(t, series, mode), nil
}

// dedupSignals keeps at most one signal per (ticker, signal date). The
// highest confidence wins; on a tie the later-generated signal wins.
func dedupSignals(signals []models.Signal) []models.Signal {
	type key struct {
		tickerID int64
		date     string
	}
	best := make(map[key]models.Signal)
	for _, s := range signals {
		k := key{tickerID: s.TickerID, date: s.SignalDate.Format("2006-01-02")}
		cur, ok := best[k]
		if !ok || s.Confidence >= cur.Confidence {
			best[k] = s
		}
	}
	out := make([]models.Signal, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].SignalDate.Before(out[j].SignalDate)
	})
	return out
}
