package detectors

import (
	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
)

// DetectSMA50Above emits a low-grade buy when price crosses above the 50
// SMA, or a weaker one when it is already above and still rising.
func DetectSMA50Above(s models.Series) (*models.Verdict, error) {
	if len(s) < 50 {
		return nil, nil
	}

	closes := s.Closes()
	sma50 := indicators.SMA(closes, 50)

	n := len(closes)
	curPrice, prevPrice := closes[n-1], closes[n-2]
	curSMA, prevSMA := sma50[n-1], sma50[n-2]

	crossedAbove := prevPrice <= prevSMA && curPrice > curSMA
	aboveAndRising := curPrice > curSMA && curPrice > prevPrice

	if !crossedAbove && !aboveAndRising {
		return nil, nil
	}

	v := &models.Verdict{
		Type:     models.SignalBuy,
		Detector: string(KindSMA50Above),
		Details: map[string]any{
			"type":          string(KindSMA50Above),
			"price":         curPrice,
			"sma_50":        curSMA,
			"crossed_above": crossedAbove,
		},
	}
	if crossedAbove {
		v.Strength = models.StrengthModerate
		v.Confidence = 0.65
		v.Details["reason"] = "price crossed above SMA 50"
	} else {
		v.Strength = models.StrengthWeak
		v.Confidence = 0.5
		v.Details["reason"] = "price above SMA 50 and trending up"
	}
	return v, nil
}
