package detectors

import (
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
	"SignalForge/pkg/util"
)

// crossoverWindow is the candle offset range, relative to the series end,
// in which the 5/20 EMA crossover must have occurred. Offset -1 (the last
// closed candle itself) is deliberately excluded.
const (
	crossoverWindowStart = -2
	crossoverWindowEnd   = -11
)

// confirmedBuyGates holds the six gate booleans and the inputs they were
// evaluated against.
type confirmedBuyGates struct {
	CrossoverInWindow bool
	PriceAboveEMAs    bool
	PriceAboveSMA50   bool
	VolumeConfirmed   bool
	RSIBullish        bool
	MACDAboveSignal   bool

	Open        float64
	Close       float64
	EMA5        float64
	EMA20       float64
	SMA50       float64
	RSI         float64
	MACD        float64
	MACDSignal  float64
	VolumeRatio float64
}

func (g confirmedBuyGates) coreMet() int {
	n := 0
	for _, ok := range []bool{g.CrossoverInWindow, g.PriceAboveEMAs, g.PriceAboveSMA50, g.RSIBullish, g.MACDAboveSignal} {
		if ok {
			n++
		}
	}
	return n
}

func (g confirmedBuyGates) details() map[string]any {
	return map[string]any{
		"price":               g.Close,
		"open_price":          g.Open,
		"ema_5":               g.EMA5,
		"ema_20":              g.EMA20,
		"sma_50":              g.SMA50,
		"rsi":                 g.RSI,
		"macd":                g.MACD,
		"macd_signal":         g.MACDSignal,
		"volume_ratio":        g.VolumeRatio,
		"ema_crossover":       g.CrossoverInWindow,
		"price_above_emas":    g.PriceAboveEMAs,
		"price_above_sma50":   g.PriceAboveSMA50,
		"volume_confirmation": g.VolumeConfirmed,
		"rsi_bullish":         g.RSIBullish,
		"macd_cross":          g.MACDAboveSignal,
	}
}

// evalConfirmedBuyGates computes all six gates for a series with at least
// 50 candles.
func evalConfirmedBuyGates(s models.Series) confirmedBuyGates {
	closes := s.Closes()
	volumes := s.Volumes()
	n := len(closes)

	ema5 := indicators.EMA(closes, 5)
	ema20 := indicators.EMA(closes, 20)
	sma50 := indicators.SMA(closes, 50)
	rsi := indicators.RSI(closes, 14)
	macdLine, macdSignal, _ := indicators.MACD(closes, 12, 26, 9)

	g := confirmedBuyGates{
		Open:       s.Last().Open,
		Close:      closes[n-1],
		EMA5:       ema5[n-1],
		EMA20:      ema20[n-1],
		SMA50:      sma50[n-1],
		RSI:        rsi[n-1],
		MACD:       macdLine[n-1],
		MACDSignal: macdSignal[n-1],
	}

	// Gate 1: most recent 5/20 crossover sits in the trailing window and
	// the 5 EMA is still above as of the last closed candle. Scanning from
	// the newest offset backwards finds the most recent cross first.
	currentAbove := g.EMA5 > g.EMA20
	if currentAbove {
		for j := crossoverWindowStart; j >= crossoverWindowEnd; j-- {
			i := n + j
			if i <= 0 {
				break
			}
			if ema5[i] > ema20[i] && ema5[i-1] <= ema20[i-1] {
				g.CrossoverInWindow = true
				break
			}
		}
	}

	// Gate 2: both open and close of the last closed candle above both EMAs.
	g.PriceAboveEMAs = g.Open > g.EMA5 && g.Open > g.EMA20 &&
		g.Close > g.EMA5 && g.Close > g.EMA20

	// Gate 3.
	g.PriceAboveSMA50 = g.Close > g.SMA50

	// Gate 4: mean volume of the last 5 candles vs the last 50.
	vol5 := indicators.Mean(volumes[n-5:])
	vol50 := indicators.Mean(volumes[n-50:])
	if vol50 > 0 {
		g.VolumeRatio = vol5 / vol50
	}
	g.VolumeConfirmed = g.VolumeRatio > 1.0

	// Gates 5 and 6. NaN comparisons fail, which is the right answer for
	// an undefined RSI.
	g.RSIBullish = g.RSI > 50
	g.MACDAboveSignal = g.MACD > g.MACDSignal

	return g
}

// DetectConfirmedBuy evaluates the six-gate confirmed buy state. All six
// gates must hold; the verdict carries today's date and every gate's
// inputs for auditability.
func DetectConfirmedBuy(s models.Series) (*models.Verdict, error) {
	return detectConfirmedBuy(s, false)
}

func detectConfirmedBuy(s models.Series, allowUnconfirmedVolume bool) (*models.Verdict, error) {
	if len(s) < 50 {
		return nil, nil
	}

	g := evalConfirmedBuyGates(s)
	today := util.DateUTC(time.Now())

	if g.coreMet() == 5 && g.VolumeConfirmed {
		details := g.details()
		details["type"] = "confirmed_buy_volume"
		details["conditions_met"] = 6
		details["reason"] = "confirmed buy, all 6 conditions met"
		return &models.Verdict{
			Type:       models.SignalBuy,
			Strength:   models.StrengthStrong,
			Confidence: 0.95,
			Detector:   string(KindConfirmedBuy),
			SignalDate: today,
			Details:    details,
		}, nil
	}

	if allowUnconfirmedVolume && g.coreMet() == 5 {
		details := g.details()
		details["type"] = "confirmed_buy_no_volume"
		details["conditions_met"] = 5
		details["reason"] = "confirmed buy without volume confirmation"
		return &models.Verdict{
			Type:       models.SignalBuy,
			Strength:   models.StrengthModerate,
			Confidence: 0.85,
			Detector:   string(KindConfirmedBuy),
			SignalDate: today,
			Details:    details,
		}, nil
	}

	return nil, nil
}
