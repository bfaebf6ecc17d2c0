// Package pricefeed fetches spot prices from the Binance public ticker API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Price returns the current USDT price for a base symbol like "BTC".
// Failures surface immediately; there is no retry.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("pricefeed: empty symbol")
	}
	pair := symbol
	if !strings.HasSuffix(pair, "USDT") {
		pair += "USDT"
	}

	endpoint := c.BaseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(pair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: fetch %s: %w", pair, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("pricefeed: http %d for %s: %s", resp.StatusCode, pair, strings.TrimSpace(string(raw)))
	}

	var out tickerResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("pricefeed: decode ticker for %s: %w", pair, err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(out.Price), 64)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: bad price %q for %s: %w", out.Price, pair, err)
	}
	return price, nil
}
