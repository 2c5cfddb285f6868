// Package detectors holds the signal detection algorithms. Each detector
// is a pure function over a validated candle series; a nil verdict means
// the conditions were not met.
package detectors

import (
	"SignalForge/internal/domain/models"
)

// Kind identifies a detector variant. The value is stored on every signal
// the detector produces.
type Kind string

const (
	KindEMACrossover Kind = "ema_crossover"
	KindGoldenCross  Kind = "golden_cross"
	KindSMAVolume    Kind = "sma_volume"
	KindSMA50Above   Kind = "sma_50_above"
	KindConfirmedBuy Kind = "confirmed_buy"
)

// Func evaluates one validated series.
type Func func(models.Series) (*models.Verdict, error)

// Tagged pairs a detector variant with its implementation.
type Tagged struct {
	Kind   Kind
	Detect Func
}

// Mode selects which detector variants run for an instrument.
type Mode string

const (
	// ModeConfirmedBuy runs only the six-gate confirmed buy detector.
	ModeConfirmedBuy Mode = "confirmed-buy"
	// ModeAll runs the full detector family.
	ModeAll Mode = "all"
)

// Options tune detector behavior.
type Options struct {
	// AllowUnconfirmedVolume enables the reduced-confidence confirmed-buy
	// tier that waives the volume gate. Off by default.
	AllowUnconfirmedVolume bool
}

// ForMode returns the detectors to run for the given mode.
func ForMode(mode Mode, opts Options) []Tagged {
	confirmed := Tagged{
		Kind: KindConfirmedBuy,
		Detect: func(s models.Series) (*models.Verdict, error) {
			return detectConfirmedBuy(s, opts.AllowUnconfirmedVolume)
		},
	}
	if mode == ModeConfirmedBuy {
		return []Tagged{confirmed}
	}
	return []Tagged{
		{Kind: KindEMACrossover, Detect: DetectEMACrossover},
		{Kind: KindGoldenCross, Detect: DetectGoldenCross},
		{Kind: KindSMAVolume, Detect: DetectSMAVolume},
		{Kind: KindSMA50Above, Detect: DetectSMA50Above},
		confirmed,
	}
}
