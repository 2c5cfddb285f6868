package models

// MarketType distinguishes instruments that trade on exchange sessions
// from those that trade around the clock.
type MarketType string

const (
	MarketStock  MarketType = "stock"
	MarketCrypto MarketType = "crypto"
)

// Ticker is one instrument under analysis.
type Ticker struct {
	ID         int64      `json:"id"`
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name,omitempty"`
	Exchange   string     `json:"exchange"`
	MarketType MarketType `json:"market_type"`
	// QuoteAsset is the pricing currency for crypto pairs (ETH, BTC, USDT).
	// Empty for equities.
	QuoteAsset string `json:"quote_asset,omitempty"`
	Active     bool   `json:"active"`
}

// PairSymbol returns the exchange-native symbol: SYMBOL+QUOTE for crypto
// pairs (ADA + ETH -> ADAETH), the plain symbol otherwise.
func (t Ticker) PairSymbol() string {
	if t.MarketType == MarketCrypto && t.QuoteAsset != "" {
		return t.Symbol + t.QuoteAsset
	}
	return t.Symbol
}
