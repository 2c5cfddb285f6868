package models

import "time"

// SignalType is the trade direction a detector recommends.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// SignalStrength grades how decisive the underlying conditions were.
type SignalStrength string

const (
	StrengthWeak     SignalStrength = "WEAK"
	StrengthModerate SignalStrength = "MODERATE"
	StrengthStrong   SignalStrength = "STRONG"
)

// Verdict is a single detector's conclusion for one validated series.
// A nil verdict from a detector means conditions were not met, which is
// the normal outcome, not an error.
type Verdict struct {
	Type       SignalType     `json:"signal_type"`
	Strength   SignalStrength `json:"signal_strength"`
	Confidence float64        `json:"confidence_score"`
	Detector   string         `json:"detector"`
	// SignalDate is set by detectors that stamp their own date; when zero
	// the orchestrator uses the market-hours validation date.
	SignalDate time.Time      `json:"signal_date,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Signal is a persistence-ready record: a verdict joined with instrument
// identity and the as-of market state.
type Signal struct {
	TickerID    int64          `json:"ticker_id"`
	Symbol      string         `json:"symbol"`
	Exchange    string         `json:"exchange"`
	MarketType  MarketType     `json:"market_type"`
	Type        SignalType     `json:"signal_type"`
	Strength    SignalStrength `json:"signal_strength"`
	Confidence  float64        `json:"confidence_score"`
	Detector    string         `json:"detector"`
	Price       float64        `json:"price"`
	Volume      float64        `json:"volume"`
	SignalDate  time.Time      `json:"signal_date"`
	GeneratedAt time.Time      `json:"generated_at"`
	Details     map[string]any `json:"details,omitempty"`
}
