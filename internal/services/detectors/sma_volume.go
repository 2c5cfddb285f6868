package detectors

import (
	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
)

// DetectSMAVolume looks for the price crossing the 200 SMA on the last
// candle with volume at least 20% above its 20-period average.
func DetectSMAVolume(s models.Series) (*models.Verdict, error) {
	if len(s) < 200 {
		return nil, nil
	}

	closes := s.Closes()
	volumes := s.Volumes()
	sma200 := indicators.SMA(closes, 200)
	volAvg := indicators.SMA(volumes, 20)

	n := len(closes)
	curPrice, prevPrice := closes[n-1], closes[n-2]
	curSMA, prevSMA := sma200[n-1], sma200[n-2]
	curVol, avgVol := volumes[n-1], volAvg[n-1]

	bullishCross := prevPrice <= prevSMA && curPrice > curSMA
	bearishCross := prevPrice >= prevSMA && curPrice < curSMA
	highVolume := curVol > avgVol*1.2

	if !highVolume || (!bullishCross && !bearishCross) {
		return nil, nil
	}

	details := map[string]any{
		"price":        curPrice,
		"sma_200":      curSMA,
		"volume":       curVol,
		"avg_volume":   avgVol,
		"volume_ratio": curVol / avgVol,
	}

	if bullishCross {
		details["type"] = "sma_volume_breakout"
		details["reason"] = "price crossed above 200 SMA with high volume"
		return &models.Verdict{
			Type:       models.SignalBuy,
			Strength:   models.StrengthStrong,
			Confidence: 0.8,
			Detector:   string(KindSMAVolume),
			Details:    details,
		}, nil
	}
	details["type"] = "sma_volume_breakdown"
	details["reason"] = "price crossed below 200 SMA with high volume"
	return &models.Verdict{
		Type:       models.SignalSell,
		Strength:   models.StrengthStrong,
		Confidence: 0.8,
		Detector:   string(KindSMAVolume),
		Details:    details,
	}, nil
}
