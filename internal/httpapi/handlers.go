package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"solanalysis/internal/analytics"
	"solanalysis/internal/price"
	"solanalysis/internal/proxy"
	"solanalysis/internal/storage"
)

const (
	// ClientCacheKey holds the analytics posted by dashboard clients.
	ClientCacheKey = "analytics:client"
	// ClientCacheTTL is how long a posted analytics cache stays valid.
	ClientCacheTTL = time.Hour

	maxCacheBody = 4 << 20
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers in the proxy's error format, with the HTTP status as code.
func writeError(w http.ResponseWriter, status int, message string) {
	proxy.WriteError(w, status, status, message)
}

// handleHealth returns a liveness response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.opts.Now().UTC().Format(time.RFC3339Nano),
	})
}

type statusResponse struct {
	Runner    interface{} `json:"runner,omitempty"`
	Endpoints []string    `json:"endpoints,omitempty"`
	Clients   int         `json:"clients"`
}

type clientCounter interface {
	Clients() int
}

// handleStatus reports runner state and the upstream hosts in use.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Endpoints: s.opts.Endpoints}
	if s.opts.Runner != nil {
		resp.Runner = s.opts.Runner.Status()
	}
	if c, ok := s.opts.Stream.(clientCounter); ok {
		resp.Clients = c.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePrice returns the SOL quote for the path currency, usd by default.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if s.opts.Prices == nil {
		writeError(w, http.StatusServiceUnavailable, "price service unavailable")
		return
	}

	quote, err := s.opts.Prices.Lookup(r.Context(), r.PathValue("currency"))
	switch {
	case errors.Is(err, price.ErrInvalidCurrency):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Printf("price lookup: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to fetch price")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleDashboard returns the full aggregator view.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.opts.Aggregator == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Aggregator.View())
}

// handleGetAnalyticsCache returns the last posted client analytics if it
// is younger than an hour and not stamped in the future.
func (s *Server) handleGetAnalyticsCache(w http.ResponseWriter, r *http.Request) {
	if s.opts.Cache == nil {
		writeError(w, http.StatusNotFound, "No cached data")
		return
	}

	var snap analytics.Snapshot
	err := storage.GetJSON(r.Context(), s.opts.Cache, ClientCacheKey, &snap)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "No cached data")
		return
	case err != nil:
		s.logger.Printf("read analytics cache: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read cache")
		return
	}

	if err := snap.Check(s.opts.Now(), ClientCacheTTL); err != nil {
		writeError(w, http.StatusNotFound, "Cached data expired")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handlePostAnalyticsCache stores client analytics, stamping the
// timestamp when the client omits it.
func (s *Server) handlePostAnalyticsCache(w http.ResponseWriter, r *http.Request) {
	if s.opts.Cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}

	var snap analytics.Snapshot
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCacheBody))
	if err := dec.Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid analytics payload")
		return
	}

	now := s.opts.Now()
	if snap.Timestamp == 0 {
		snap.Timestamp = now.UnixMilli()
	}
	if err := snap.Check(now, ClientCacheTTL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid analytics timestamp: "+err.Error())
		return
	}

	if err := storage.SetJSON(r.Context(), s.opts.Cache, ClientCacheKey, snap, ClientCacheTTL); err != nil {
		s.logger.Printf("write analytics cache: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to write cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
