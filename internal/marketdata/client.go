package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"traderjournal/internal/cache"
)

// Quote is the data service's ticker payload. IV/HV values are percentages.
type Quote struct {
	Symbol           string   `json:"symbol"`
	CompanyName      string   `json:"companyName"`
	CurrentPrice     float64  `json:"currentPrice"`
	PreviousClose    float64  `json:"previousClose"`
	DayChange        float64  `json:"dayChange"`
	DayChangePercent float64  `json:"dayChangePercent"`
	Volume           int64    `json:"volume"`
	HistoricalVol    *float64 `json:"historicalVolatility"`
}

// Client talks to the quote/options data service. Responses are cached with
// a market-hours-aware TTL because the upstream is rate limited.
type Client struct {
	hc    *http.Client
	base  string
	cache cache.Store
}

func NewClient(hc *http.Client, baseURL string, store cache.Store) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		hc:    hc,
		base:  strings.TrimRight(baseURL, "/"),
		cache: store,
	}
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if c == nil {
		return nil, fmt.Errorf("marketdata: client not configured")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("marketdata: empty symbol")
	}

	cacheKey := "quote:" + symbol
	if c.cache != nil {
		if raw, found, err := c.cache.Get(ctx, cacheKey); err == nil && found {
			var q Quote
			if err := json.Unmarshal(raw, &q); err == nil {
				return &q, nil
			}
		}
	}

	endpoint := c.base + "/api/ticker/" + url.PathEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata: ticker %s: status %d", symbol, resp.StatusCode)
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, fmt.Errorf("marketdata: decode quote: %w", err)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(q); err == nil {
			_ = c.cache.Set(ctx, cacheKey, raw, cache.MarketTTL(time.Now()))
		}
	}
	return &q, nil
}
