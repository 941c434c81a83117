// Package coingecko is the external price tier. It asks the CoinGecko
// history endpoint for an asset's closing price on a given day, rate
// limited and with responses cached on disk so repeated runs do not hammer
// the API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// pricePath extracts the day's price from the history payload.
const pricePath = "$.market_data.current_price.%s"

// DefaultIDs maps common asset symbols to CoinGecko coin ids. Unknown
// symbols are a miss, not an error, so equities and fiat simply fall
// through this tier.
func DefaultIDs() map[string]string {
	return map[string]string{
		"BTC":   "bitcoin",
		"ETH":   "ethereum",
		"SOL":   "solana",
		"ADA":   "cardano",
		"DOT":   "polkadot",
		"AVAX":  "avalanche-2",
		"MATIC": "matic-network",
		"LINK":  "chainlink",
		"ATOM":  "cosmos",
		"XLM":   "stellar",
		"ALGO":  "algorand",
		"CELO":  "celo",
		"DOGE":  "dogecoin",
		"LTC":   "litecoin",
		"BCH":   "bitcoin-cash",
		"UNI":   "uniswap",
		"AAVE":  "aave",
		"COMP":  "compound-governance-token",
		"USDC":  "usd-coin",
		"USDT":  "tether",
		"DAI":   "dai",
	}
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	// APIKey is sent as the demo API key header when set.
	APIKey string
	// Currency is the quote currency, lower case. Defaults to "usd".
	Currency string
	// IDs maps asset symbols to coin ids. Defaults to DefaultIDs.
	IDs map[string]string
	// RequestsPerMinute throttles API calls. Defaults to 10.
	RequestsPerMinute int
	// CacheDir enables on-disk caching of responses when set.
	CacheDir string
	Logger   *slog.Logger
}

// Client fetches daily prices from CoinGecko. Safe for concurrent use.
type Client struct {
	base     string
	apiKey   string
	currency string
	ids      map[string]string
	client   *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger
}

// New returns a Client ready to serve the external tier.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.IDs == nil {
		opts.IDs = DefaultIDs()
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	transport := http.DefaultTransport
	if opts.CacheDir != "" {
		transport = &diskCache{Dir: opts.CacheDir, Transport: transport}
	}
	return &Client{
		base:     opts.BaseURL,
		apiKey:   opts.APIKey,
		currency: opts.Currency,
		ids:      opts.IDs,
		client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		log:      opts.Logger,
	}
}

func (c *Client) Tier() resolver.Tier { return resolver.TierExternal }

// Lookup fetches the asset's price on the given day. Symbols without a
// coin id mapping, and days CoinGecko has no data for, are a plain miss.
func (c *Client) Lookup(ctx context.Context, asset string, on date.Date) (decimal.Decimal, bool, error) {
	id, ok := c.ids[asset]
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Decimal{}, false, err
	}

	u := fmt.Sprintf("%s/coins/%s/history?%s", c.base, url.PathEscape(id), url.Values{
		"date":         {on.Format("02-01-2006")},
		"localization": {"false"},
	}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return decimal.Decimal{}, false, nil
	case resp.StatusCode != http.StatusOK:
		return decimal.Decimal{}, false, fmt.Errorf("coingecko: %s: %s", id, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("coingecko: %s: %w", id, err)
	}
	raw, err := jsonpath.Get(fmt.Sprintf(pricePath, c.currency), payload)
	if err != nil {
		// History exists but carries no market data for that day.
		c.log.Debug("no market data", "asset", asset, "date", on.String())
		return decimal.Decimal{}, false, nil
	}
	f, ok := raw.(float64)
	if !ok {
		return decimal.Decimal{}, false, fmt.Errorf("coingecko: %s: unexpected price type %T", id, raw)
	}
	return decimal.NewFromFloat(f), true, nil
}
