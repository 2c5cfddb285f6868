// Package binance fetches daily klines from the Binance spot REST API and
// exposes them as a SeriesSource for crypto pairs.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
	"SignalForge/internal/service/cache"
	"SignalForge/internal/service/ratelimit"
	xhttp "SignalForge/pkg/http"
	"SignalForge/pkg/logger"
)

const defaultBaseURL = "https://api.binance.com"

// ClientOption configures the Binance client.
type ClientOption func(*Client)

// Client pulls OHLCV klines for crypto pairs.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	cache    cache.BytesCache
	limiter  *ratelimit.Limiter
	log      *logger.Logger
	cacheTTL time.Duration
	// token bucket sized to stay under the public API weight limits
	rateCapacity float64
	ratePerSec   float64
}

// NewClient creates a new Binance klines client.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		log:          log,
		cacheTTL:     5 * time.Minute,
		rateCapacity: 20,
		ratePerSec:   15,
		limiter:      ratelimit.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	}
	return c
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *xhttp.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithCache enables series caching.
func WithCache(bc cache.BytesCache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = bc
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithRateLimit tunes the request token bucket.
func WithRateLimit(capacity, perSec float64) ClientOption {
	return func(c *Client) {
		if capacity > 0 {
			c.rateCapacity = capacity
		}
		if perSec > 0 {
			c.ratePerSec = perSec
		}
	}
}

// FetchSeries implements repository.SeriesSource for crypto pairs. The
// pair symbol is the ticker symbol joined with its quote asset
// (ADA + ETH -> ADAETH).
func (c *Client) FetchSeries(ctx context.Context, t models.Ticker, tf repository.Timeframe, limit int) (models.Series, error) {
	symbol := t.PairSymbol()
	key := fmt.Sprintf("binance:klines:%s:%s:%d", symbol, tf, limit)

	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(key); err == nil && ok {
			var s models.Series
			if err := json.Unmarshal(b, &s); err == nil {
				return s, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx, "binance", c.rateCapacity, c.ratePerSec); err != nil {
		return nil, err
	}

	var raw [][]any
	err := c.http.GetJSON(ctx, c.baseURL+"/api/v3/klines", url.Values{
		"symbol":   {symbol},
		"interval": {string(tf)},
		"limit":    {strconv.Itoa(limit)},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	series, err := parseKlines(raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	c.log.Debug("fetched klines",
		logger.String("symbol", symbol),
		logger.Int("candles", len(series)),
	)

	if c.cache != nil && len(series) > 0 {
		if b, err := json.Marshal(series); err == nil {
			_ = c.cache.SetBytes(key, b, c.cacheTTL)
		}
	}
	return series, nil
}

// parseKlines decodes the Binance kline rows:
// [openTime, open, high, low, close, volume, closeTime, ...] with prices
// as strings.
func parseKlines(raw [][]any) (models.Series, error) {
	series := make(models.Series, 0, len(raw))
	for i, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row %d too short", i)
		}
		ms, ok := row[0].(float64)
		if !ok {
			return nil, fmt.Errorf("kline row %d: bad open time", i)
		}
		var cols [5]float64
		for j := 1; j <= 5; j++ {
			s, ok := row[j].(string)
			if !ok {
				return nil, fmt.Errorf("kline row %d: column %d not a string", i, j)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("kline row %d: column %d: %w", i, j, err)
			}
			cols[j-1] = v
		}
		series = append(series, models.Candle{
			Timestamp: time.UnixMilli(int64(ms)).UTC(),
			Open:      cols[0],
			High:      cols[1],
			Low:       cols[2],
			Close:     cols[3],
			Volume:    cols[4],
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
	return series, nil
}
