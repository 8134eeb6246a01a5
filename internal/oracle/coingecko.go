package oracle

import (
	"github.com/chucky-1/papertrade/internal/metrics"
	"github.com/chucky-1/papertrade/internal/model"
	"github.com/shopspring/decimal"

	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CoinGecko asks the coingecko simple price API
type CoinGecko struct {
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewCoinGecko is constructor
func NewCoinGecko(baseURL, currency string, timeout time.Duration) *CoinGecko {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	return &CoinGecko{
		baseURL:    strings.TrimRight(baseURL, "/"),
		currency:   strings.ToLower(currency),
		httpClient: &http.Client{Transport: tr, Timeout: timeout},
	}
}

// Price returns the price of asset in the configured currency
func (c *CoinGecko) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	start := time.Now()
	price, err := c.price(ctx, asset)
	metrics.OracleLatency.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		metrics.OracleRequestsTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.OracleRequestsTotal.WithLabelValues("not_found").Inc()
	default:
		metrics.OracleRequestsTotal.WithLabelValues("error").Inc()
	}
	return price, err
}

func (c *CoinGecko) price(ctx context.Context, asset string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", asset)
	q.Set("vs_currencies", c.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	// {"bitcoin":{"usd":43125.07}}
	var body map[string]map[string]json.Number
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err = dec.Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	raw, ok := body[asset][c.currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNotFound, asset)
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed price %q", ErrUnavailable, raw)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s has no price", ErrNotFound, asset)
	}
	if !model.InBounds(price) {
		return decimal.Zero, fmt.Errorf("%w: price of %s out of range", ErrUnavailable, asset)
	}
	return price, nil
}
