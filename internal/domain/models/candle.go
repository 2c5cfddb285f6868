package models

import "time"

// Candle is one OHLCV observation for a single trading period.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is a time-ordered candle sequence, oldest first.
type Series []Candle

// Closes returns the close column, index-aligned with the series.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Close
	}
	return out
}

// Volumes returns the volume column, index-aligned with the series.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Volume
	}
	return out
}

// Last returns the most recent candle. Caller guarantees the series is
// non-empty.
func (s Series) Last() Candle {
	return s[len(s)-1]
}

// At indexes the series; negative offsets count back from the end, so
// At(-1) is the last candle.
func (s Series) At(i int) Candle {
	if i < 0 {
		i += len(s)
	}
	return s[i]
}
