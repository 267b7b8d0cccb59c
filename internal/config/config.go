// Package config loads service configuration from the environment, with an
// optional .env file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"solanalysis/internal/price"
)

// Config holds all configuration values for the dashboard service.
type Config struct {
	// HTTP
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"  envSeparator:"," envDefault:"http://localhost,http://localhost:80,http://localhost:3000,http://localhost:5000,http://127.0.0.1:5000,http://frontend,http://frontend:80"`

	// Solana RPC
	RPCEndpoints []string      `env:"SOLANA_RPC_ENDPOINTS" envSeparator:"," envDefault:"https://api.mainnet-beta.solana.com,https://solana-mainnet.rpc.extrnode.com,https://rpc.ankr.com/solana"`
	WSEndpoint   string        `env:"SOLANA_WS_ENDPOINT"`
	RPCTimeout   time.Duration `env:"RPC_TIMEOUT"          envDefault:"10s"`

	// Prices
	Currency     string        `env:"DASHBOARD_CURRENCY" envDefault:"usd"`
	CoinGeckoURL string        `env:"COINGECKO_URL"      envDefault:"https://api.coingecko.com/api/v3"`
	CoinbaseURL  string        `env:"COINBASE_URL"       envDefault:"https://api.coinbase.com"`
	BinanceURL   string        `env:"BINANCE_URL"        envDefault:"https://api.binance.com/api/v3"`
	PriceTimeout time.Duration `env:"PRICE_TIMEOUT"      envDefault:"5s"`

	// Cache
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"          envDefault:"0"`
	CacheEntries  int    `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	// Dashboard
	NetworkInterval  time.Duration `env:"NETWORK_INTERVAL"  envDefault:"10s"`
	HolderInterval   time.Duration `env:"HOLDER_INTERVAL"   envDefault:"60s"`
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
	SeriesCapacity   int           `env:"SERIES_CAPACITY"   envDefault:"60"`
	ActivityCapacity int           `env:"ACTIVITY_CAPACITY" envDefault:"24"`
}

// Load reads configuration from environment variables, falling back to the
// given .env files (".env" when none are given). Missing files are ignored.
// The result is not validated; call Validate after applying Overrides.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
	cfg.RPCEndpoints = compact(cfg.RPCEndpoints)
	cfg.AllowedOrigins = compact(cfg.AllowedOrigins)
	return cfg, nil
}

// Overrides holds command-line values that replace loaded settings.
// Empty fields leave the setting unchanged.
type Overrides struct {
	HTTPAddr     string
	RPCEndpoints string // comma-separated
	WSEndpoint   string
	Currency     string
	RedisAddr    string
}

// Apply replaces settings with the non-empty overrides.
func (c *Config) Apply(o Overrides) {
	if o.HTTPAddr != "" {
		c.HTTPAddr = o.HTTPAddr
	}
	if o.RPCEndpoints != "" {
		c.RPCEndpoints = compact(strings.Split(o.RPCEndpoints, ","))
	}
	if o.WSEndpoint != "" {
		c.WSEndpoint = o.WSEndpoint
	}
	if o.Currency != "" {
		c.Currency = strings.ToLower(strings.TrimSpace(o.Currency))
	}
	if o.RedisAddr != "" {
		c.RedisAddr = o.RedisAddr
	}
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if len(c.RPCEndpoints) == 0 {
		return fmt.Errorf("SOLANA_RPC_ENDPOINTS is required")
	}
	for _, ep := range c.RPCEndpoints {
		if err := checkURL(ep, "http", "https"); err != nil {
			return fmt.Errorf("SOLANA_RPC_ENDPOINTS: %w", err)
		}
	}

	if c.WSEndpoint != "" {
		if err := checkURL(c.WSEndpoint, "ws", "wss"); err != nil {
			return fmt.Errorf("SOLANA_WS_ENDPOINT: %w", err)
		}
	}

	if _, err := price.NormalizeCurrency(c.Currency); err != nil {
		return fmt.Errorf("DASHBOARD_CURRENCY: %w", err)
	}

	if c.RPCTimeout <= 0 || c.PriceTimeout <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if c.NetworkInterval <= 0 || c.HolderInterval <= 0 || c.SnapshotInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}

	if c.SeriesCapacity < 1 || c.ActivityCapacity < 1 {
		return fmt.Errorf("SERIES_CAPACITY and ACTIVITY_CAPACITY must be at least 1")
	}

	if c.CacheEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}

	return nil
}

// EndpointHosts returns the RPC endpoint hosts, without paths or query
// strings that may carry API keys.
func (c *Config) EndpointHosts() []string {
	hosts := make([]string, 0, len(c.RPCEndpoints))
	for _, ep := range c.RPCEndpoints {
		if u, err := url.Parse(ep); err == nil {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}

// MaskedRedisPassword returns the Redis password with most characters
// hidden for logging.
func (c *Config) MaskedRedisPassword() string {
	return maskSecret(c.RedisPassword)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("url must use %s", strings.Join(schemes, " or "))
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
