// Package main runs the dashboard backend: the JSON-RPC proxy, the price
// endpoints, the refresh cycles feeding the analytics aggregator and the
// live WebSocket stream, all behind one HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solanalysis/internal/analytics"
	"solanalysis/internal/config"
	"solanalysis/internal/dashboard"
	"solanalysis/internal/httpapi"
	"solanalysis/internal/price"
	"solanalysis/internal/proxy"
	"solanalysis/internal/solana"
	"solanalysis/internal/storage"
	"solanalysis/internal/storage/memory"
	rediscache "solanalysis/internal/storage/redis"
	"solanalysis/internal/stream"
)

func main() {
	envFile := flag.String("env-file", ".env", "Optional .env file")
	addr := flag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	endpoints := flag.String("rpc-endpoints", "", "Comma-separated Solana RPC endpoints (overrides SOLANA_RPC_ENDPOINTS)")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (overrides SOLANA_WS_ENDPOINT)")
	currency := flag.String("currency", "", "Dashboard currency (overrides DASHBOARD_CURRENCY)")
	redisAddr := flag.String("redis-addr", "", "Redis address (overrides REDIS_ADDR)")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg.Apply(config.Overrides{
		HTTPAddr:     *addr,
		RPCEndpoints: *endpoints,
		WSEndpoint:   *wsEndpoint,
		Currency:     *currency,
		RedisAddr:    *redisAddr,
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logger.Printf("RPC endpoints: %v", cfg.EndpointHosts())
	logger.Printf("Dashboard currency: %s", cfg.Currency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, closeCache, err := createCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create cache: %v", err)
	}
	defer closeCache()

	rpcProxy, err := proxy.New(proxy.Options{
		Endpoints: cfg.RPCEndpoints,
		Timeout:   cfg.RPCTimeout,
		Cache:     cache,
		Logger:    log.New(os.Stdout, "[proxy] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create RPC proxy: %v", err)
	}

	prices := price.NewService(price.Options{
		CoinGeckoURL: cfg.CoinGeckoURL,
		CoinbaseURL:  cfg.CoinbaseURL,
		BinanceURL:   cfg.BinanceURL,
		Timeout:      cfg.PriceTimeout,
		Cache:        cache,
		Logger:       log.New(os.Stdout, "[price] ", log.LstdFlags),
	})

	var agg *analytics.Aggregator
	hub := stream.NewHub(stream.Options{
		CheckOrigin: originChecker(cfg.AllowedOrigins),
		Snapshot: func() interface{} {
			return agg.View()
		},
		Logger: log.New(os.Stdout, "[stream] ", log.LstdFlags),
	})
	agg = analytics.New(analytics.Options{
		SeriesCapacity:   cfg.SeriesCapacity,
		ActivityCapacity: cfg.ActivityCapacity,
		Sink:             hub,
		Logger:           log.New(os.Stdout, "[analytics] ", log.LstdFlags),
	})

	// Dashboard RPC goes through the proxy so it shares failover and caching.
	rpc := solana.NewHTTPClient("",
		solana.WithCaller(rpcProxy),
		solana.WithLogger(log.New(os.Stdout, "[solana] ", log.LstdFlags)),
	)

	var slots solana.WSClient
	if cfg.WSEndpoint != "" {
		wsCfg := solana.DefaultWSConfig()
		wsCfg.Logger = log.New(os.Stdout, "[ws] ", log.LstdFlags)
		ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, &wsCfg)
		if err != nil {
			logger.Printf("Slot feed unavailable, block time falls back to cycle interval: %v", err)
		} else {
			slots = ws
			defer ws.Close()
		}
	}

	runner, err := dashboard.NewRunner(dashboard.Options{
		RPC:              rpc,
		Slots:            slots,
		Prices:           prices,
		Aggregator:       agg,
		Cache:            cache,
		Currency:         cfg.Currency,
		NetworkInterval:  cfg.NetworkInterval,
		HolderInterval:   cfg.HolderInterval,
		SnapshotInterval: cfg.SnapshotInterval,
		Logger:           log.New(os.Stdout, "[dashboard] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create dashboard runner: %v", err)
	}

	server := httpapi.NewServer(cfg.HTTPAddr, httpapi.Options{
		Proxy:          rpcProxy,
		Prices:         prices,
		Aggregator:     agg,
		Stream:         hub,
		Runner:         runner,
		Cache:          cache,
		Endpoints:      rpcProxy.Hosts(),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log.New(os.Stdout, "[http] ", log.LstdFlags),
	})

	// Channel to signal completion
	done := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(cfg.ShutdownTimeout + 5*time.Second):
			logger.Println("Graceful shutdown timed out, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return runner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer stop()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	close(done)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createCache returns Redis when configured, otherwise an in-memory cache.
func createCache(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Printf("Using in-memory cache (%d entries)", cfg.CacheEntries)
		return memory.NewCache(cfg.CacheEntries), func() {}, nil
	}

	c := rediscache.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.Close()
		return nil, nil, err
	}
	logger.Printf("Using Redis cache at %s (password %s)", cfg.RedisAddr, cfg.MaskedRedisPassword())
	return c, func() { c.Close() }, nil
}

// originChecker allows WebSocket upgrades from the CORS allow-list and
// from clients that send no Origin.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
