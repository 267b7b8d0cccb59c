// Package proxy forwards browser JSON-RPC requests to a list of Solana RPC
// endpoints with failover, rate-limit rotation and a short-lived reply cache.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"solanalysis/internal/observability"
	"solanalysis/internal/solana"
	"solanalysis/internal/storage"
)

// DefaultTimeout bounds a single upstream attempt.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes limits the size of a proxied request body.
const maxBodyBytes = 1 << 20

// ErrNoEndpoints is returned by New when no usable endpoint is configured.
var ErrNoEndpoints = errors.New("no rpc endpoints configured")

// DefaultCacheTTLs returns how long successful replies are kept per method.
// Methods not listed are never cached.
func DefaultCacheTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		"getBlock":                    60 * time.Second,
		"getTokenSupply":              60 * time.Second,
		"getVoteAccounts":             30 * time.Second,
		"getBalance":                  20 * time.Second,
		"getRecentPerformanceSamples": 2 * time.Second,
		"getBlockHeight":              2 * time.Second,
		"getSlot":                     2 * time.Second,
	}
}

// Options configures an RPCProxy.
type Options struct {
	Endpoints  []string
	Timeout    time.Duration
	Cache      storage.Cache // nil disables caching
	CacheTTLs  map[string]time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// RPCProxy forwards JSON-RPC requests to the first endpoint that answers.
// Requests start at a shared cursor that moves past endpoints which rate
// limit or refuse us.
type RPCProxy struct {
	endpoints []string
	hosts     []string
	timeout   time.Duration
	cache     storage.Cache
	ttls      map[string]time.Duration
	client    *http.Client
	logger    *log.Logger

	mu     sync.Mutex
	cursor int
}

// New creates an RPCProxy.
func New(opts Options) (*RPCProxy, error) {
	if len(opts.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	hosts := make([]string, len(opts.Endpoints))
	for i, ep := range opts.Endpoints {
		u, err := url.Parse(ep)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("endpoint %d: invalid url", i)
		}
		// Query strings carry API keys, keep them out of logs and metrics.
		hosts[i] = u.Host
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTLs == nil {
		opts.CacheTTLs = DefaultCacheTTLs()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &RPCProxy{
		endpoints: append([]string(nil), opts.Endpoints...),
		hosts:     hosts,
		timeout:   opts.Timeout,
		cache:     opts.Cache,
		ttls:      opts.CacheTTLs,
		client:    opts.HTTPClient,
		logger:    opts.Logger,
	}, nil
}

// Hosts returns the endpoint hosts in configured order.
func (p *RPCProxy) Hosts() []string {
	return append([]string(nil), p.hosts...)
}

// Cursor returns the index of the endpoint tried first.
func (p *RPCProxy) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// rotate moves the cursor past idx unless another request already did.
func (p *RPCProxy) rotate(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cursor == idx {
		p.cursor = (idx + 1) % len(p.endpoints)
		observability.RecordRotation()
	}
}

// request is the part of a JSON-RPC request the proxy looks at.
type request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Call forwards one JSON-RPC request body and returns the upstream reply.
// It satisfies solana.Caller so in-process clients share the failover and
// cache of browser traffic. Failures are returned as *Error.
func (p *RPCProxy) Call(ctx context.Context, body []byte) ([]byte, error) {
	reply, perr := p.handle(ctx, body)
	if perr != nil {
		return nil, perr
	}
	return reply, nil
}

// ServeHTTP implements http.Handler.
func (p *RPCProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, &Error{Status: http.StatusMethodNotAllowed, Code: CodeInvalidRequest, Message: "Method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, &Error{Status: http.StatusRequestEntityTooLarge, Code: CodeInvalidRequest, Message: "Request body too large"})
		return
	}

	reply, perr := p.handle(r.Context(), body)
	if perr != nil {
		writeError(w, perr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}

func (p *RPCProxy) handle(ctx context.Context, body []byte) ([]byte, *Error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		observability.RecordProxyRequest("batch", "invalid")
		return nil, errBatch
	}

	var req request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		observability.RecordProxyRequest("unknown", "invalid")
		return nil, errParse
	}
	if req.Method == "" {
		observability.RecordProxyRequest("unknown", "invalid")
		return nil, errInvalidRequest
	}

	method := p.methodLabel(req.Method)
	ttl, cacheable := p.ttls[req.Method]
	cacheable = cacheable && p.cache != nil && ttl > 0

	var key string
	if cacheable {
		key = cacheKey(req)
		if cached, err := p.cache.Get(ctx, key); err == nil {
			if stamped, err := restamp(cached, req.ID); err == nil {
				observability.RecordProxyRequest(method, "cached")
				return stamped, nil
			}
		}
	}

	reply, perr := p.forward(ctx, trimmed, req.Method)
	if perr != nil {
		outcome := "error"
		if perr.Code == CodeRateLimited {
			outcome = "rate_limited"
		}
		observability.RecordProxyRequest(method, outcome)
		return nil, perr
	}

	if cacheable {
		if err := p.cache.Set(ctx, key, reply, ttl); err != nil {
			p.logger.Printf("cache %s: %v", req.Method, err)
		}
	}
	observability.RecordProxyRequest(method, "ok")
	return reply, nil
}

// methodLabel bounds metric cardinality to the methods we know about.
func (p *RPCProxy) methodLabel(method string) string {
	if _, ok := p.ttls[method]; ok {
		return method
	}
	return "other"
}

// forward tries every endpoint once, starting at the cursor.
func (p *RPCProxy) forward(ctx context.Context, body []byte, method string) ([]byte, *Error) {
	n := len(p.endpoints)
	start := p.Cursor()

	rateLimited := 0
	var last *Error

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return nil, &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: failedMessage, err: ctx.Err()}
		}

		idx := (start + i) % n
		reply, status, err := p.post(ctx, idx, body)

		switch {
		case status == http.StatusTooManyRequests || status == http.StatusForbidden:
			if status == http.StatusTooManyRequests {
				rateLimited++
			}
			p.logger.Printf("%s: %s answered %d, rotating", method, p.hosts[idx], status)
			p.rotate(idx)
			last = &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: failedMessage, err: err}
			continue
		case err != nil:
			p.logger.Printf("%s: %s failed: %v", method, p.hosts[idx], err)
			last = &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: failedMessage, err: err}
			continue
		}

		var probe struct {
			Error *solana.RPCError `json:"error"`
		}
		if err := json.Unmarshal(reply, &probe); err != nil {
			p.logger.Printf("%s: %s sent malformed reply: %v", method, p.hosts[idx], err)
			last = &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: failedMessage, err: err}
			continue
		}
		if probe.Error != nil {
			last = &Error{Status: http.StatusInternalServerError, Code: probe.Error.Code, Message: probe.Error.Message, err: probe.Error}
			continue
		}

		return reply, nil
	}

	if rateLimited == n {
		return nil, errRateLimited
	}
	return nil, last
}

// post sends body to endpoint idx. The status is 0 when no response arrived.
func (p *RPCProxy) post(ctx context.Context, idx int, body []byte) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoints[idx], bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		observability.RecordUpstream(p.hosts[idx], 0, time.Since(started).Seconds())
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	observability.RecordUpstream(p.hosts[idx], resp.StatusCode, time.Since(started).Seconds())
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, resp.StatusCode, nil
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, fmt.Errorf("status 429: %w", solana.ErrRateLimited)
	default:
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func cacheKey(req request) string {
	params := []byte("[]")
	if len(req.Params) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, req.Params); err == nil {
			params = buf.Bytes()
		} else {
			params = req.Params
		}
	}
	return "rpc:" + req.Method + ":" + string(params)
}

// restamp replaces the id of a cached reply with the caller's id.
func restamp(reply []byte, id json.RawMessage) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(reply, &fields); err != nil {
		return nil, err
	}
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	fields["id"] = id
	return json.Marshal(fields)
}

var _ solana.Caller = (*RPCProxy)(nil)
