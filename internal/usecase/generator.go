package usecase

import (
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/services/detectors"
	"SignalForge/internal/services/markethours"
	"SignalForge/pkg/logger"
)

// Generator runs the detector family over one instrument's candle series:
// market-hours validation first, then every detector for the configured
// mode, attaching instrument identity and as-of market state to each
// verdict.
type Generator struct {
	oracle  *markethours.Oracle
	log     *logger.Logger
	metrics domrepo.Metrics
	opts    detectors.Options
	now     func() time.Time
}

// NewGenerator creates a new Generator instance.
func NewGenerator(
	oracle *markethours.Oracle,
	log *logger.Logger,
	metrics domrepo.Metrics,
	opts detectors.Options,
) *Generator {
	return &Generator{
		oracle:  oracle,
		log:     log,
		metrics: metrics,
		opts:    opts,
		now:     time.Now,
	}
}

// Generate validates the series and evaluates the mode's detectors. A
// detector that errors or panics is logged and skipped; the remaining
// detectors still run. An empty result is the normal outcome.
func (g *Generator) Generate(t models.Ticker, series models.Series, mode detectors.Mode) []models.Signal {
	now := g.now()
	v := g.oracle.Validate(series, t.Exchange, now)

	g.log.Debug("series validated",
		logger.String("symbol", t.Symbol),
		logger.Int("candles", len(v.Series)),
		logger.String("reason", v.Reason),
		logger.Bool("low_confidence", v.LowConfidence),
	)

	if len(v.Series) == 0 {
		g.log.Warn("no valid data for ticker", logger.String("symbol", t.Symbol))
		return nil
	}

	last := v.Series.Last()
	var signals []models.Signal

	for _, d := range g.mode(mode) {
		verdict, err := runDetector(d, v.Series)
		if err != nil {
			g.metrics.RecordError("detector")
			g.log.Error("detector failed",
				logger.String("detector", string(d.Kind)),
				logger.String("symbol", t.Symbol),
				logger.Error(err),
			)
			continue
		}
		if verdict == nil {
			continue
		}

		signalDate := verdict.SignalDate
		if signalDate.IsZero() {
			signalDate = v.SignalDate
		}

		signals = append(signals, models.Signal{
			TickerID:    t.ID,
			Symbol:      t.Symbol,
			Exchange:    t.Exchange,
			MarketType:  t.MarketType,
			Type:        verdict.Type,
			Strength:    verdict.Strength,
			Confidence:  verdict.Confidence,
			Detector:    verdict.Detector,
			Price:       last.Close,
			Volume:      last.Volume,
			SignalDate:  signalDate,
			GeneratedAt: now.UTC(),
			Details:     verdict.Details,
		})

		g.metrics.RecordSignal(string(d.Kind), t.Symbol)
		g.metrics.RecordLastPrice(t.Symbol, last.Close)
	}

	return signals
}

func (g *Generator) mode(mode detectors.Mode) []detectors.Tagged {
	return detectors.ForMode(mode, g.opts)
}

// runDetector isolates one detector invocation so a panic inside an
// algorithm cannot take down the batch.
func runDetector(d detectors.Tagged, s models.Series) (v *models.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("detector %s panicked: %v", d.Kind, r)
		}
	}()
	return d.Detect(s)
}
