// Package price looks up the SOL price from public market data APIs with a
// fixed fallback table when none of them answers.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"solanalysis/internal/observability"
	"solanalysis/internal/storage"
)

// Source names reported in a Quote.
const (
	SourceCoinGecko = "CoinGecko"
	SourceCoinbase  = "CoinBase"
	SourceBinance   = "Binance"
	SourceFallback  = "fallback"
)

// Defaults for Options.
const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultCoinbaseURL  = "https://api.coinbase.com"
	DefaultBinanceURL   = "https://api.binance.com/api/v3"
	DefaultTimeout      = 5 * time.Second
	DefaultCacheTTL     = 30 * time.Second
	DefaultCurrency     = "usd"
)

// ErrInvalidCurrency is returned for anything that is not an ISO 4217 code.
var ErrInvalidCurrency = errors.New("invalid currency")

// fallbackPrices are served when every source fails.
var fallbackPrices = map[string]float64{
	"usd": 180,
	"eur": 165,
	"gbp": 142,
	"jpy": 26800,
	"cad": 245,
	"aud": 275,
	"chf": 160,
	"cny": 1290,
	"inr": 15000,
	"krw": 235000,
	"sgd": 243,
	"brl": 890,
}

// Quote is a SOL price and where it came from.
type Quote struct {
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// Fallback returns the fallback quote for currency. Unknown currencies get
// the USD price.
func Fallback(cur string) Quote {
	p, ok := fallbackPrices[strings.ToLower(cur)]
	if !ok {
		p = fallbackPrices[DefaultCurrency]
	}
	return Quote{Price: p, Source: SourceFallback}
}

// NormalizeCurrency validates cur as an ISO 4217 code and returns it in lower
// case. An empty string yields the default currency.
func NormalizeCurrency(cur string) (string, error) {
	cur = strings.TrimSpace(cur)
	if cur == "" {
		return DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(strings.ToUpper(cur))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, cur)
	}
	return strings.ToLower(unit.String()), nil
}

// Options configures a Service.
type Options struct {
	CoinGeckoURL string
	CoinbaseURL  string
	BinanceURL   string
	Timeout      time.Duration // per source
	Cache        storage.Cache // nil disables caching
	CacheTTL     time.Duration
	HTTPClient   *http.Client
	Logger       *log.Logger
}

type fetchFunc func(ctx context.Context, cur string) (float64, error)

type source struct {
	name  string
	fetch fetchFunc
}

// Service resolves SOL quotes, trying each source in order.
type Service struct {
	sources  []source
	timeout  time.Duration
	cache    storage.Cache
	cacheTTL time.Duration
	client   *http.Client
	logger   *log.Logger
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.CoinGeckoURL == "" {
		opts.CoinGeckoURL = DefaultCoinGeckoURL
	}
	if opts.CoinbaseURL == "" {
		opts.CoinbaseURL = DefaultCoinbaseURL
	}
	if opts.BinanceURL == "" {
		opts.BinanceURL = DefaultBinanceURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Service{
		timeout:  opts.Timeout,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		client:   opts.HTTPClient,
		logger:   opts.Logger,
	}
	s.sources = []source{
		{SourceCoinGecko, s.coinGecko(strings.TrimRight(opts.CoinGeckoURL, "/"))},
		{SourceCoinbase, s.coinbase(strings.TrimRight(opts.CoinbaseURL, "/"))},
		{SourceBinance, s.binance(strings.TrimRight(opts.BinanceURL, "/"))},
	}
	return s
}

// Lookup returns the SOL price in cur. It only fails for an invalid
// currency; when no source answers the fallback table is used.
func (s *Service) Lookup(ctx context.Context, cur string) (Quote, error) {
	code, err := NormalizeCurrency(cur)
	if err != nil {
		return Quote{}, err
	}

	key := "price:sol:" + code
	if s.cache != nil {
		var cached Quote
		if err := storage.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return cached, nil
		}
	}

	for _, src := range s.sources {
		p, err := s.try(ctx, src, code)
		if err != nil {
			s.logger.Printf("price %s from %s: %v", code, src.name, err)
			continue
		}

		q := Quote{Price: p, Source: src.name}
		if s.cache != nil {
			if err := storage.SetJSON(ctx, s.cache, key, q, s.cacheTTL); err != nil {
				s.logger.Printf("cache price %s: %v", code, err)
			}
		}
		observability.RecordPriceLookup(src.name, code, p)
		return q, nil
	}

	q := Fallback(code)
	observability.RecordPriceLookup(q.Source, code, q.Price)
	return q, nil
}

func (s *Service) try(ctx context.Context, src source, code string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := src.fetch(ctx, code)
	if err != nil {
		return 0, err
	}
	if p <= 0 {
		return 0, fmt.Errorf("non-positive price %v", p)
	}
	return p, nil
}

// errUnsupported marks a source that does not quote the currency.
var errUnsupported = errors.New("currency not supported")

func (s *Service) coinGecko(base string) fetchFunc {
	return func(ctx context.Context, cur string) (float64, error) {
		q := url.Values{"ids": {"solana"}, "vs_currencies": {cur}}
		var body map[string]map[string]float64
		if err := s.getJSON(ctx, base+"/simple/price?"+q.Encode(), &body); err != nil {
			return 0, err
		}
		p, ok := body["solana"][cur]
		if !ok {
			return 0, errUnsupported
		}
		return p, nil
	}
}

func (s *Service) coinbase(base string) fetchFunc {
	return func(ctx context.Context, cur string) (float64, error) {
		var body struct {
			Data struct {
				Rates map[string]string `json:"rates"`
			} `json:"data"`
		}
		if err := s.getJSON(ctx, base+"/v2/exchange-rates?currency=SOL", &body); err != nil {
			return 0, err
		}
		rate, ok := body.Data.Rates[strings.ToUpper(cur)]
		if !ok {
			return 0, errUnsupported
		}
		return parseDecimal(rate)
	}
}

func (s *Service) binance(base string) fetchFunc {
	return func(ctx context.Context, cur string) (float64, error) {
		if cur != "usd" {
			return 0, errUnsupported
		}
		var body struct {
			Price string `json:"price"`
		}
		if err := s.getJSON(ctx, base+"/ticker/price?symbol=SOLUSDT", &body); err != nil {
			return 0, err
		}
		return parseDecimal(body.Price)
	}
}

func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func (s *Service) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
