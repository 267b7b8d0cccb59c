// Package httpapi exposes the dashboard over HTTP: the RPC proxy, price
// quotes, the dashboard snapshot, the analytics cache and live updates.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"solanalysis/internal/analytics"
	"solanalysis/internal/dashboard"
	"solanalysis/internal/observability"
	"solanalysis/internal/storage"
)

// StatusSource reports runner state for /status.
type StatusSource interface {
	Status() dashboard.Status
}

// Options configures a Server.
type Options struct {
	Proxy          http.Handler // POST /solana-rpc
	Prices         dashboard.PriceSource
	Aggregator     *analytics.Aggregator
	Stream         http.Handler // GET /ws, optional
	Runner         StatusSource // optional
	Cache          storage.Cache
	Endpoints      []string // upstream hosts shown by /status
	AllowedOrigins []string
	Now            func() time.Time
	Logger         *log.Logger
}

// Server represents an HTTP server with all routes configured.
type Server struct {
	opts   Options
	logger *log.Logger
	mux    *http.ServeMux
	server *http.Server
}

// NewServer creates a new HTTP server with configured routes.
func NewServer(addr string, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	if s.opts.Proxy != nil {
		s.mux.Handle("POST /solana-rpc", s.opts.Proxy)
	}

	s.mux.HandleFunc("GET /price/solana", s.handlePrice)
	s.mux.HandleFunc("GET /price/solana/{currency}", s.handlePrice)

	s.mux.HandleFunc("GET /analytics/cache", s.handleGetAnalyticsCache)
	s.mux.HandleFunc("POST /analytics/cache", s.handlePostAnalyticsCache)

	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	if s.opts.Stream != nil {
		s.mux.Handle("GET /ws", s.opts.Stream)
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.Handle("GET /metrics", observability.Handler())
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux, RequestID(), CORS(s.opts.AllowedOrigins), Instrument())
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Printf("Starting HTTP server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
