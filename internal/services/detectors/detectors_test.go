package detectors

import (
	"testing"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/services/indicators"
)

func flatCloses(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func flatVolumes(n int, v float64) []float64 {
	return flatCloses(n, v)
}

func TestEMACrossoverOverboughtSuppressed(t *testing.T) {
	// A flat series with one huge jump crosses 12/26 on the last candle but
	// drives RSI to 100, so the overbought guard must suppress the buy.
	closes := flatCloses(40, 100)
	closes[39] = 150
	s := buildSeries(closes, flatVolumes(40, 1000))

	v, err := DetectEMACrossover(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("expected the RSI guard to suppress the overbought crossover")
	}
}

func TestEMACrossoverBullish(t *testing.T) {
	// Decline, then a zigzag recovery. The zigzag keeps losses inside the
	// RSI window so the guard stays satisfied while the EMAs grind back up.
	closes := make([]float64, 0, 80)
	price := 190.0
	for i := 0; i < 30; i++ {
		closes = append(closes, price)
		price -= 3
	}
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			price += 12
		} else {
			price -= 8
		}
		closes = append(closes, price)
	}

	ema12 := indicators.EMA(closes, 12)
	ema26 := indicators.EMA(closes, 26)
	cross := -1
	for i := 35; i < len(closes); i++ {
		if ema12[i] > ema26[i] && ema12[i-1] <= ema26[i-1] {
			cross = i
			break
		}
	}
	if cross < 0 {
		t.Fatalf("fixture broken: recovery never crossed")
	}
	trimmed := closes[:cross+1]
	rsi := indicators.RSI(trimmed, 14)
	if last := rsi[len(rsi)-1]; last >= 70 {
		t.Fatalf("fixture broken: rsi %v at the cross, want < 70", last)
	}

	s := buildSeries(trimmed, flatVolumes(len(trimmed), 1000))
	v, err := DetectEMACrossover(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatalf("expected a bullish crossover verdict")
	}
	if v.Type != models.SignalBuy || v.Confidence != 0.7 {
		t.Errorf("verdict = %s/%v, want BUY/0.7", v.Type, v.Confidence)
	}
}

func TestGoldenCross(t *testing.T) {
	closes := make([]float64, 201)
	for i := 0; i < 150; i++ {
		closes[i] = 100
	}
	for i := 150; i < 200; i++ {
		closes[i] = 99
	}
	closes[200] = 150
	s := buildSeries(closes, flatVolumes(201, 1000))

	v, err := DetectGoldenCross(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatalf("expected a golden cross verdict")
	}
	if v.Type != models.SignalBuy || v.Strength != models.StrengthStrong || v.Confidence != 0.85 {
		t.Errorf("verdict = %s/%s/%v, want BUY/STRONG/0.85", v.Type, v.Strength, v.Confidence)
	}
}

func TestDeathCross(t *testing.T) {
	closes := make([]float64, 201)
	for i := 0; i < 150; i++ {
		closes[i] = 100
	}
	for i := 150; i < 200; i++ {
		closes[i] = 101
	}
	closes[200] = 50
	s := buildSeries(closes, flatVolumes(201, 1000))

	v, err := DetectGoldenCross(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || v.Type != models.SignalSell {
		t.Fatalf("expected a death cross sell, got %+v", v)
	}
}

func TestGoldenCrossNeedsLongHistory(t *testing.T) {
	s := buildSeries(flatCloses(150, 100), flatVolumes(150, 1000))
	v, err := DetectGoldenCross(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("expected no verdict below 200 candles")
	}
}

func TestSMAVolumeBreakout(t *testing.T) {
	closes := flatCloses(201, 100)
	closes[200] = 102
	volumes := flatVolumes(201, 1000)
	volumes[200] = 2000
	s := buildSeries(closes, volumes)

	v, err := DetectSMAVolume(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatalf("expected a breakout verdict")
	}
	if v.Type != models.SignalBuy || v.Confidence != 0.8 {
		t.Errorf("verdict = %s/%v, want BUY/0.8", v.Type, v.Confidence)
	}
	if v.Details["type"] != "sma_volume_breakout" {
		t.Errorf("details type = %v", v.Details["type"])
	}
}

func TestSMAVolumeRequiresElevatedVolume(t *testing.T) {
	closes := flatCloses(201, 100)
	closes[200] = 102
	s := buildSeries(closes, flatVolumes(201, 1000))

	v, err := DetectSMAVolume(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("cross on average volume must not signal")
	}
}

func TestSMA50AboveCrossed(t *testing.T) {
	closes := flatCloses(51, 100)
	closes[50] = 101
	s := buildSeries(closes, flatVolumes(51, 1000))

	v, err := DetectSMA50Above(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil {
		t.Fatalf("expected a crossed-above verdict")
	}
	if v.Strength != models.StrengthModerate || v.Confidence != 0.65 {
		t.Errorf("verdict = %s/%v, want MODERATE/0.65", v.Strength, v.Confidence)
	}
}

func TestForModeConfirmedBuyOnly(t *testing.T) {
	got := ForMode(ModeConfirmedBuy, Options{})
	if len(got) != 1 || got[0].Kind != KindConfirmedBuy {
		t.Fatalf("confirmed-buy mode must run exactly the confirmed buy detector, got %v", got)
	}
	all := ForMode(ModeAll, Options{})
	if len(all) != 5 {
		t.Fatalf("all mode must run the full family, got %d detectors", len(all))
	}
}
