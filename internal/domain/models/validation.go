package models

import "time"

// Validation is the market-hours verdict for one series: the candles safe
// to analyze, the date signals should carry, and a human-readable reason
// for the decision.
type Validation struct {
	Series     Series
	SignalDate time.Time
	Reason     string
	// LowConfidence marks series where the only available candle is still
	// forming and was kept anyway.
	LowConfidence bool
}
