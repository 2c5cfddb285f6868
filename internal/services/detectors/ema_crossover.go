package detectors

import (
	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
)

// DetectEMACrossover looks for a 12/26 EMA crossover on the last candle,
// gated by RSI so overbought buys and oversold sells are suppressed.
func DetectEMACrossover(s models.Series) (*models.Verdict, error) {
	if len(s) < 26 {
		return nil, nil
	}

	closes := s.Closes()
	ema12 := indicators.EMA(closes, 12)
	ema26 := indicators.EMA(closes, 26)
	rsi := indicators.RSI(closes, 14)

	n := len(closes)
	cur12, cur26 := ema12[n-1], ema26[n-1]
	prev12, prev26 := ema12[n-2], ema26[n-2]
	curRSI := rsi[n-1]

	bullish := prev12 <= prev26 && cur12 > cur26
	bearish := prev12 >= prev26 && cur12 < cur26

	details := map[string]any{
		"type":   string(KindEMACrossover),
		"ema_12": cur12,
		"ema_26": cur26,
		"rsi":    curRSI,
	}

	switch {
	case bullish && curRSI < 70:
		details["reason"] = "bullish EMA crossover with RSI confirmation"
		return &models.Verdict{
			Type:       models.SignalBuy,
			Strength:   models.StrengthModerate,
			Confidence: 0.7,
			Detector:   string(KindEMACrossover),
			Details:    details,
		}, nil
	case bearish && curRSI > 30:
		details["reason"] = "bearish EMA crossover with RSI confirmation"
		return &models.Verdict{
			Type:       models.SignalSell,
			Strength:   models.StrengthModerate,
			Confidence: 0.7,
			Detector:   string(KindEMACrossover),
			Details:    details,
		}, nil
	}
	return nil, nil
}
