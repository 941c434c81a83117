// Package config loads the engine configuration: file locations, the
// reporting currency, cost basis methods, stablecoin pins and provider
// settings. Values come from a yaml file, with environment variables
// (optionally from a .env file) taking precedence for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CoinGecko holds external provider settings.
type CoinGecko struct {
	// APIKey usually comes from COINGECKO_API_KEY rather than the file.
	APIKey            string `yaml:"api_key"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// Config is the engine configuration.
type Config struct {
	// Currency is the reporting currency code.
	Currency string `yaml:"currency"`
	// Method is the default cost basis method: "fifo" or "average".
	Method string `yaml:"method"`
	// Methods overrides the method per asset symbol.
	Methods map[string]string `yaml:"methods"`
	// StableAssets are pinned to 1.0 in the reporting currency.
	StableAssets []string `yaml:"stable_assets"`
	// Aliases folds provider-specific symbols into canonical ones,
	// e.g. CGLD into CELO.
	Aliases map[string]string `yaml:"aliases"`

	// Transactions is the canonical stream file.
	Transactions string `yaml:"transactions"`
	// PriceDB is the sqlite primary price store.
	PriceDB string `yaml:"price_db"`
	// PriceCacheDir is the jsonl price cache folder.
	PriceCacheDir string `yaml:"price_cache_dir"`
	// HTTPCacheDir caches provider responses on disk.
	HTTPCacheDir string `yaml:"http_cache_dir"`

	// Workers bounds batch parallelism.
	Workers int `yaml:"workers"`
	// MaxStaleDays bounds the stale price fallback. Zero disables it.
	MaxStaleDays int `yaml:"max_stale_days"`

	CoinGecko CoinGecko `yaml:"coingecko"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Currency:      "USD",
		Method:        "fifo",
		StableAssets:  []string{"USD", "USDC", "USDT", "DAI"},
		Aliases:       map[string]string{"CGLD": "CELO", "ETH2": "ETH"},
		Transactions:  "transactions.jsonl",
		PriceDB:       "prices.db",
		PriceCacheDir: "pricecache",
		HTTPCacheDir:  filepath.Join(os.TempDir(), "cfo-http"),
		Workers:       4,
		MaxStaleDays:  7,
		CoinGecko:     CoinGecko{RequestsPerMinute: 10},
	}
}

// Load reads the yaml file at path over the defaults, then applies
// environment overrides. A missing file is not an error; a malformed one
// is.
func Load(path string) (Config, error) {
	// Secrets may live in a .env next to the working directory.
	godotenv.Load()

	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, err
		}
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	c.applyEnv()
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := os.Getenv("CFO_CURRENCY"); v != "" {
		c.Currency = v
	}
	if v := os.Getenv("CFO_TRANSACTIONS"); v != "" {
		c.Transactions = v
	}
	if v := os.Getenv("CFO_PRICE_DB"); v != "" {
		c.PriceDB = v
	}
	if v := os.Getenv("CFO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
}

func (c Config) validate() error {
	switch c.Method {
	case "fifo", "average":
	default:
		return fmt.Errorf("config: unknown cost basis method %q", c.Method)
	}
	for asset, m := range c.Methods {
		switch m {
		case "fifo", "average":
		default:
			return fmt.Errorf("config: unknown cost basis method %q for %s", m, asset)
		}
	}
	if c.Currency == "" {
		return fmt.Errorf("config: currency must be set")
	}
	return nil
}

// CanonicalAsset folds an aliased symbol into its canonical form.
func (c Config) CanonicalAsset(symbol string) string {
	if canon, ok := c.Aliases[symbol]; ok {
		return canon
	}
	return symbol
}
