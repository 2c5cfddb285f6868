package usecase

import (
	"errors"
	"testing"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/detectors"
	"SignalForge/internal/services/markethours"
	"SignalForge/pkg/logger"
	"SignalForge/pkg/util"
)

func quietLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeMetrics struct {
	signals map[string]int
	errors  map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{signals: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordSignal(detector, symbol string)      { m.signals[detector]++ }
func (m *fakeMetrics) RecordError(kind string)                   { m.errors[kind]++ }
func (m *fakeMetrics) RecordLastPrice(symbol string, p float64)  {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)  {}

// confirmedBuyFixture builds a daily series ending yesterday that passes
// all six confirmed-buy gates: flat history, then a strong rise on
// elevated volume with the 5/20 crossover eight candles back.
func confirmedBuyFixture() models.Series {
	end := util.DateUTC(time.Now()).AddDate(0, 0, -1)
	const flat, rising = 47, 8
	s := make(models.Series, 0, flat+rising)
	for i := 0; i < flat+rising; i++ {
		price := 100.0
		volume := 1000.0
		if i >= flat {
			price = 101 + float64(2*(i-flat))
			volume = 3000
		}
		s = append(s, models.Candle{
			Timestamp: end.AddDate(0, 0, i-flat-rising+1),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    volume,
		})
	}
	return s
}

func TestGeneratorConfirmedBuyEndToEnd(t *testing.T) {
	metrics := newFakeMetrics()
	g := NewGenerator(markethours.NewOracle(nil), quietLogger(t), metrics, detectors.Options{})

	ticker := models.Ticker{ID: 7, Symbol: "ACME", Exchange: "NASDAQ", MarketType: models.MarketStock, Active: true}
	series := confirmedBuyFixture()

	got := g.Generate(ticker, series, detectors.ModeConfirmedBuy)
	if len(got) != 1 {
		t.Fatalf("expected exactly one signal, got %d", len(got))
	}

	s := got[0]
	if s.Type != models.SignalBuy || s.Strength != models.StrengthStrong || s.Confidence != 0.95 {
		t.Errorf("signal = %s/%s/%v, want BUY/STRONG/0.95", s.Type, s.Strength, s.Confidence)
	}
	if s.TickerID != 7 || s.Symbol != "ACME" || s.Exchange != "NASDAQ" {
		t.Errorf("instrument identity not attached: %+v", s)
	}
	if s.Price != series.Last().Close || s.Volume != series.Last().Volume {
		t.Errorf("as-of price/volume = %v/%v, want last candle's %v/%v",
			s.Price, s.Volume, series.Last().Close, series.Last().Volume)
	}
	if !s.SignalDate.Equal(util.DateUTC(time.Now())) {
		t.Errorf("signal date = %v, want today", s.SignalDate)
	}
	if s.Details["conditions_met"] != 6 {
		t.Errorf("details conditions_met = %v, want 6", s.Details["conditions_met"])
	}
	if metrics.signals[string(detectors.KindConfirmedBuy)] != 1 {
		t.Errorf("expected the signal metric to be recorded")
	}
}

func TestGeneratorFlatSeriesNoSignal(t *testing.T) {
	g := NewGenerator(markethours.NewOracle(nil), quietLogger(t), newFakeMetrics(), detectors.Options{})
	end := util.DateUTC(time.Now()).AddDate(0, 0, -1)
	s := make(models.Series, 60)
	for i := range s {
		s[i] = models.Candle{Timestamp: end.AddDate(0, 0, i-59), Open: 100, Close: 100, Volume: 1000}
	}

	got := g.Generate(models.Ticker{Symbol: "FLAT", Exchange: "NYSE", Active: true}, s, detectors.ModeAll)
	if len(got) != 0 {
		t.Fatalf("flat series produced %d signals, want none", len(got))
	}
}

func TestGeneratorEmptySeries(t *testing.T) {
	g := NewGenerator(markethours.NewOracle(nil), quietLogger(t), newFakeMetrics(), detectors.Options{})
	got := g.Generate(models.Ticker{Symbol: "NONE", Exchange: "NYSE", Active: true}, nil, detectors.ModeAll)
	if got != nil {
		t.Fatalf("empty series must yield no signals, got %v", got)
	}
}

func TestRunDetectorPanicBoundary(t *testing.T) {
	d := detectors.Tagged{
		Kind: "boom",
		Detect: func(models.Series) (*models.Verdict, error) {
			panic(errors.New("indicator blew up"))
		},
	}
	v, err := runDetector(d, nil)
	if v != nil {
		t.Fatalf("expected nil verdict after panic")
	}
	if err == nil {
		t.Fatalf("expected the panic surfaced as an error")
	}
}
