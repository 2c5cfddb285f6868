// Package finnhub fetches historical stock candles from the Finnhub REST
// API and exposes them as a SeriesSource for equities.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
	"SignalForge/internal/service/cache"
	"SignalForge/internal/service/ratelimit"
	xhttp "SignalForge/pkg/http"
	"SignalForge/pkg/logger"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// ClientOption configures the Finnhub client.
type ClientOption func(*Client)

// Client pulls OHLCV candles for stock tickers.
type Client struct {
	baseURL  string
	apiKey   string
	http     *xhttp.Client
	cache    cache.BytesCache
	limiter  *ratelimit.Limiter
	log      *logger.Logger
	cacheTTL time.Duration
	// free tier allows 60 calls/minute
	rateCapacity float64
	ratePerSec   float64
	now          func() time.Time
}

// NewClient creates a new Finnhub candle client.
func NewClient(apiKey string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		apiKey:       apiKey,
		log:          log,
		cacheTTL:     5 * time.Minute,
		rateCapacity: 10,
		ratePerSec:   1,
		limiter:      ratelimit.New(),
		now:          time.Now,
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

// candleResponse is Finnhub's column-oriented candle payload.
type candleResponse struct {
	Status  string    `json:"s"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
	Times   []int64   `json:"t"`
}

// resolution maps a timeframe onto Finnhub's resolution codes.
func resolution(tf repository.Timeframe) string {
	switch tf {
	case repository.TF1h:
		return "60"
	case repository.TF1w:
		return "W"
	default:
		return "D"
	}
}

// FetchSeries implements repository.SeriesSource for equities. The lookup
// window is twice the requested candle count in days, which covers
// weekends and short holidays at daily resolution.
func (c *Client) FetchSeries(ctx context.Context, t models.Ticker, tf repository.Timeframe, limit int) (models.Series, error) {
	key := fmt.Sprintf("finnhub:candle:%s:%s:%d", t.Symbol, tf, limit)

	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(key); err == nil && ok {
			var s models.Series
			if err := json.Unmarshal(b, &s); err == nil {
				return s, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx, "finnhub", c.rateCapacity, c.ratePerSec); err != nil {
		return nil, err
	}

	to := c.now().UTC()
	from := to.AddDate(0, 0, -2*limit)

	var resp candleResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/stock/candle", url.Values{
		"symbol":     {t.Symbol},
		"resolution": {resolution(tf)},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
		"token":      {c.apiKey},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("finnhub candle %s: %w", t.Symbol, err)
	}

	series, err := buildSeries(t.Symbol, resp, limit)
	if err != nil {
		return nil, err
	}

	c.log.Debug("fetched candles",
		logger.String("symbol", t.Symbol),
		logger.Int("candles", len(series)),
	)

	if c.cache != nil && len(series) > 0 {
		if b, err := json.Marshal(series); err == nil {
			_ = c.cache.SetBytes(key, b, c.cacheTTL)
		}
	}
	return series, nil
}

// buildSeries converts the column-oriented response to a candle series,
// keeping at most the newest limit candles. "no_data" is a normal empty
// result.
func buildSeries(symbol string, resp candleResponse, limit int) (models.Series, error) {
	if resp.Status == "no_data" {
		return nil, nil
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("finnhub candle %s: status %q", symbol, resp.Status)
	}
	n := len(resp.Times)
	if len(resp.Opens) != n || len(resp.Highs) != n || len(resp.Lows) != n ||
		len(resp.Closes) != n || len(resp.Volumes) != n {
		return nil, fmt.Errorf("finnhub candle %s: ragged columns", symbol)
	}

	series := make(models.Series, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, models.Candle{
			Timestamp: time.Unix(resp.Times[i], 0).UTC(),
			Open:      resp.Opens[i],
			High:      resp.Highs[i],
			Low:       resp.Lows[i],
			Close:     resp.Closes[i],
			Volume:    resp.Volumes[i],
		})
	}
	if len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series, nil
}
