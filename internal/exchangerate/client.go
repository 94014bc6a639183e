package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"service-converter/internal"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
	maxBodyBytes   = 32 << 10
)

type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) LatestRates(ctx context.Context, base internal.CurrencyCode) (*internal.LatestRatesResponse, error) {
	if !base.IsValid() {
		return nil, fmt.Errorf("latest rates: %w %q", internal.ErrInvalidCurrency, base)
	}

	u, err := url.Parse(c.BaseURL + "/" + url.PathEscape(base.String()))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("exchangerate-api http %d: %s", resp.StatusCode, string(body))
	}

	var out internal.LatestRatesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Rates == nil {
		return nil, fmt.Errorf("response has no rates")
	}
	return &out, nil
}

// FetchRates returns the latest rates with typed currency codes. The
// provider lists the base itself at 1; that entry is dropped.
func (c *Client) FetchRates(ctx context.Context, base internal.CurrencyCode) (internal.RateSet, error) {
	resp, err := c.LatestRates(ctx, base)
	if err != nil {
		return internal.RateSet{}, fmt.Errorf("latest rates: %w", err)
	}

	baseCCY := base
	if strings.TrimSpace(resp.Base) != "" {
		baseCCY, err = internal.NewCurrencyCode(resp.Base)
		if err != nil {
			return internal.RateSet{}, fmt.Errorf("invalid base %q: %w", resp.Base, err)
		}
	}

	typed := make(map[internal.CurrencyCode]float64, len(resp.Rates))
	for quoteStr, rate := range resp.Rates {
		quote, err := internal.NewCurrencyCode(quoteStr)
		if err != nil {
			return internal.RateSet{}, fmt.Errorf("invalid quote %q: %w", quoteStr, err)
		}
		if quote == baseCCY {
			continue
		}
		typed[quote] = rate
	}

	set := internal.RateSet{Base: baseCCY, AsOf: resp.Date, Rates: typed}
	if resp.TimeLastUpdated > 0 {
		set.UpdatedAt = time.Unix(resp.TimeLastUpdated, 0).UTC()
	}
	return set, nil
}
