package price

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solanalysis/internal/storage/memory"
)

type market struct {
	*httptest.Server
	hits atomic.Int32
}

func newMarket(t *testing.T, status int, body string) *market {
	t.Helper()
	m := &market{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(m.Close)
	return m
}

func down(t *testing.T) *market {
	return newMarket(t, http.StatusServiceUnavailable, "")
}

func newTestService(gecko, coinbase, binance *market, opts Options) *Service {
	opts.CoinGeckoURL = gecko.URL
	opts.CoinbaseURL = coinbase.URL
	opts.BinanceURL = binance.URL
	opts.Logger = log.New(io.Discard, "", 0)
	return NewService(opts)
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"", "usd", false},
		{"usd", "usd", false},
		{"EUR", "eur", false},
		{" jpy ", "jpy", false},
		{"dollars", "", true},
		{"12", "", true},
		{"u$d", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeCurrency(tt.in)
			if tt.err {
				assert.True(t, errors.Is(err, ErrInvalidCurrency))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallback(t *testing.T) {
	assert.Equal(t, Quote{Price: 165, Source: SourceFallback}, Fallback("eur"))
	assert.Equal(t, Quote{Price: 235000, Source: SourceFallback}, Fallback("KRW"))
	assert.Equal(t, Quote{Price: 180, Source: SourceFallback}, Fallback("sek"))
}

func TestLookup_CoinGecko(t *testing.T) {
	gecko := newMarket(t, http.StatusOK, `{"solana":{"eur":151.25}}`)
	coinbase := down(t)
	svc := newTestService(gecko, coinbase, down(t), Options{})

	q, err := svc.Lookup(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 151.25, Source: SourceCoinGecko}, q)
	assert.Equal(t, int32(0), coinbase.hits.Load())
}

func TestLookup_CoinbaseAfterCoinGeckoFails(t *testing.T) {
	coinbase := newMarket(t, http.StatusOK, `{"data":{"currency":"SOL","rates":{"GBP":"130.5","USD":"170.1"}}}`)
	svc := newTestService(down(t), coinbase, down(t), Options{})

	q, err := svc.Lookup(context.Background(), "gbp")
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 130.5, Source: SourceCoinbase}, q)
}

func TestLookup_BinanceUSDOnly(t *testing.T) {
	binance := newMarket(t, http.StatusOK, `{"symbol":"SOLUSDT","price":"175.40000000"}`)
	svc := newTestService(down(t), down(t), binance, Options{})

	q, err := svc.Lookup(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 175.4, Source: SourceBinance}, q)

	q, err = svc.Lookup(context.Background(), "cad")
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 245, Source: SourceFallback}, q)
	assert.Equal(t, int32(1), binance.hits.Load())
}

func TestLookup_ZeroPriceSkipped(t *testing.T) {
	gecko := newMarket(t, http.StatusOK, `{"solana":{"usd":0}}`)
	binance := newMarket(t, http.StatusOK, `{"price":"176"}`)
	svc := newTestService(gecko, down(t), binance, Options{})

	q, err := svc.Lookup(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, SourceBinance, q.Source)
}

func TestLookup_Fallback(t *testing.T) {
	svc := newTestService(down(t), down(t), down(t), Options{})

	q, err := svc.Lookup(context.Background(), "brl")
	require.NoError(t, err)
	assert.Equal(t, Quote{Price: 890, Source: SourceFallback}, q)
}

func TestLookup_InvalidCurrency(t *testing.T) {
	gecko := newMarket(t, http.StatusOK, `{}`)
	svc := newTestService(gecko, down(t), down(t), Options{})

	_, err := svc.Lookup(context.Background(), "not-a-currency")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	assert.Equal(t, int32(0), gecko.hits.Load())
}

func TestLookup_SourceTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	coinbase := newMarket(t, http.StatusOK, `{"data":{"rates":{"USD":"181"}}}`)

	svc := newTestService(&market{Server: slow}, coinbase, down(t), Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	q, err := svc.Lookup(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, SourceCoinbase, q.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLookup_Cached(t *testing.T) {
	gecko := newMarket(t, http.StatusOK, `{"solana":{"usd":180.5}}`)
	svc := newTestService(gecko, down(t), down(t), Options{Cache: memory.NewCache(10)})

	for i := 0; i < 3; i++ {
		q, err := svc.Lookup(context.Background(), "usd")
		require.NoError(t, err)
		assert.Equal(t, 180.5, q.Price)
	}
	assert.Equal(t, int32(1), gecko.hits.Load())
}

func TestLookup_FallbackNotCached(t *testing.T) {
	gecko := down(t)
	svc := newTestService(gecko, down(t), down(t), Options{Cache: memory.NewCache(10)})

	svc.Lookup(context.Background(), "usd")
	svc.Lookup(context.Background(), "usd")
	assert.Equal(t, int32(2), gecko.hits.Load())
}
