package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/detectors"
	"SignalForge/internal/usecase"
	pkgch "SignalForge/pkg/clickhouse"
	"SignalForge/pkg/config"
	applogger "SignalForge/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	batch    *usecase.BatchGenerator
	sink     *usecase.SignalSink
	chClient *pkgch.Client
	tickers  []models.Ticker

	metricsSrv *http.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	batch *usecase.BatchGenerator,
	sink *usecase.SignalSink,
	chClient *pkgch.Client,
	tickers []models.Ticker,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		batch:    batch,
		sink:     sink,
		chClient: chClient,
		tickers:  tickers,
	}
}

// Run executes generation passes until interrupted. With a zero run
// interval a single pass runs and the process exits.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		a.log.Info("shutdown signal received", applogger.String("signal", s.String()))
		cancel()
	}()

	if a.cfg.Metrics.Enabled {
		a.startMetricsServer()
	}

	if a.chClient != nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
		err := a.chClient.Health(pingCtx)
		pingCancel()
		if err != nil {
			a.shutdown()
			return err
		}
	}

	mode := detectors.Mode(a.cfg.Generator.Mode)
	a.log.Info("starting signal generation",
		applogger.String("mode", string(mode)),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Int("tickers", len(a.tickers)),
	)

	runErr := a.runOnce(ctx, mode)

	if interval := a.cfg.Generator.RunInterval; interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				if err := a.runOnce(ctx, mode); err != nil {
					runErr = err
				}
			}
		}
	}

	a.shutdown()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func (a *App) runOnce(ctx context.Context, mode detectors.Mode) error {
	res, err := a.batch.GenerateBatch(ctx, a.tickers, mode)
	if err != nil {
		a.log.Error("generation pass failed", applogger.Error(err))
		return err
	}

	a.log.Info("generation pass complete",
		applogger.Int("processed", res.Processed),
		applogger.Int("generated", res.Generated),
		applogger.Int("persisted", res.Persisted),
		applogger.Int("deduplicated", res.Deduplicated),
		applogger.Int64("purged", res.Purged),
		applogger.Int("errors", len(res.Errors)),
		applogger.Duration("duration", res.Duration),
	)
	for symbol, msg := range res.Errors {
		a.log.Warn("ticker skipped",
			applogger.String("symbol", symbol),
			applogger.String("error", msg),
		)
	}
	return nil
}

func (a *App) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())

	a.metricsSrv = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.log.Info("metrics server listening", applogger.String("addr", a.cfg.Metrics.Addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server error", applogger.Error(err))
		}
	}()
}

// shutdown releases backend resources.
func (a *App) shutdown() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.log.Warn("metrics server shutdown error", applogger.Error(err))
		}
	}

	if a.sink != nil {
		a.sink.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
