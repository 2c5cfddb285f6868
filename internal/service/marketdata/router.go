// Package marketdata composes the provider clients into one SeriesSource
// keyed by market type.
package marketdata

import (
	"context"
	"fmt"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
)

// Router dispatches series fetches to the provider that serves the
// ticker's market type.
type Router struct {
	stocks repository.SeriesSource
	crypto repository.SeriesSource
}

// NewRouter creates a new Router instance. Either source may be nil when
// the universe contains no tickers of that market type.
func NewRouter(stocks, crypto repository.SeriesSource) *Router {
	return &Router{stocks: stocks, crypto: crypto}
}

func (r *Router) FetchSeries(ctx context.Context, t models.Ticker, tf repository.Timeframe, limit int) (models.Series, error) {
	switch t.MarketType {
	case models.MarketCrypto:
		if r.crypto == nil {
			return nil, fmt.Errorf("no crypto series source configured for %s", t.Symbol)
		}
		return r.crypto.FetchSeries(ctx, t, tf, limit)
	case models.MarketStock:
		if r.stocks == nil {
			return nil, fmt.Errorf("no stock series source configured for %s", t.Symbol)
		}
		return r.stocks.FetchSeries(ctx, t, tf, limit)
	default:
		return nil, fmt.Errorf("unknown market type %q for %s", t.MarketType, t.Symbol)
	}
}
