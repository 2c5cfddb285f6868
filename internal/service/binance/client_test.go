package binance

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseKlines(t *testing.T) {
	payload := `[
		[1712188800000, "0.51", "0.55", "0.50", "0.54", "120000", 1712275199999],
		[1712275200000, "0.54", "0.56", "0.53", "0.55", "98000", 1712361599999]
	]`
	var raw [][]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	series, err := parseKlines(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d candles, want 2", len(series))
	}
	first := series[0]
	if !first.Timestamp.Equal(time.UnixMilli(1712188800000).UTC()) {
		t.Errorf("timestamp = %v", first.Timestamp)
	}
	if first.Open != 0.51 || first.Close != 0.54 || first.Volume != 120000 {
		t.Errorf("candle = %+v", first)
	}
	if !series[0].Timestamp.Before(series[1].Timestamp) {
		t.Errorf("series must be oldest first")
	}
}

func TestParseKlinesRejectsMalformedRow(t *testing.T) {
	var raw [][]any
	if err := json.Unmarshal([]byte(`[[1712188800000, "0.51"]]`), &raw); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if _, err := parseKlines(raw); err == nil {
		t.Fatalf("expected error for a short row")
	}
}
