package detectors

import (
	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
)

// DetectGoldenCross looks for the 50 SMA crossing the 200 SMA on the last
// candle: above is a golden cross, below a death cross.
func DetectGoldenCross(s models.Series) (*models.Verdict, error) {
	if len(s) < 200 {
		return nil, nil
	}

	closes := s.Closes()
	sma50 := indicators.SMA(closes, 50)
	sma200 := indicators.SMA(closes, 200)

	n := len(closes)
	cur50, cur200 := sma50[n-1], sma200[n-1]
	prev50, prev200 := sma50[n-2], sma200[n-2]

	// NaN comparisons are false, so a series with exactly 200 candles can
	// never cross (the previous SMA200 is undefined).
	goldenCross := prev50 <= prev200 && cur50 > cur200
	deathCross := prev50 >= prev200 && cur50 < cur200

	if goldenCross {
		return &models.Verdict{
			Type:       models.SignalBuy,
			Strength:   models.StrengthStrong,
			Confidence: 0.85,
			Detector:   string(KindGoldenCross),
			Details: map[string]any{
				"type":    "golden_cross",
				"sma_50":  cur50,
				"sma_200": cur200,
				"reason":  "golden cross, 50 SMA crossed above 200 SMA",
			},
		}, nil
	}
	if deathCross {
		return &models.Verdict{
			Type:       models.SignalSell,
			Strength:   models.StrengthStrong,
			Confidence: 0.85,
			Detector:   string(KindGoldenCross),
			Details: map[string]any{
				"type":    "death_cross",
				"sma_50":  cur50,
				"sma_200": cur200,
				"reason":  "death cross, 50 SMA crossed below 200 SMA",
			},
		}, nil
	}
	return nil, nil
}
