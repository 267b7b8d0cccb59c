package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, method string, result interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		if req.Method != method {
			t.Errorf("expected method %s, got %s", method, req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetBlock(t *testing.T) {
	blockTime := int64(1700000000)
	server := rpcServer(t, "getBlock", map[string]interface{}{
		"blockHeight": int64(250000000),
		"blockTime":   blockTime,
		"transactions": []map[string]interface{}{
			{
				"transaction": map[string]interface{}{
					"signatures": []string{"sig1"},
					"message": map[string]interface{}{
						"accountKeys": []string{"payer", "dest", "11111111111111111111111111111111"},
						"instructions": []map[string]interface{}{
							{"programIdIndex": 2, "accounts": []int{0, 1}, "data": "3Bxs4h24hBtQy9rw"},
						},
					},
				},
				"meta": map[string]interface{}{
					"err":               nil,
					"fee":               5000,
					"preBalances":       []int64{10_000_000_000, 0, 1},
					"postBalances":      []int64{7_999_995_000, 2_000_000_000, 1},
					"logMessages":       []string{"Program 11111111111111111111111111111111 invoke [1]"},
					"innerInstructions": []interface{}{},
				},
			},
			{
				"transaction": map[string]interface{}{
					"signatures": []string{"sig2"},
					"message": map[string]interface{}{
						"accountKeys": []map[string]interface{}{
							{"pubkey": "voter", "signer": true},
							{"pubkey": "Vote111111111111111111111111111111111111111", "signer": false},
						},
						"instructions": []map[string]interface{}{
							{"programId": "Vote111111111111111111111111111111111111111"},
						},
					},
				},
				"meta": map[string]interface{}{
					"err": map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
				},
			},
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	block, err := client.GetBlock(context.Background(), 260000000)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}

	if block.Slot != 260000000 {
		t.Errorf("expected slot 260000000, got %d", block.Slot)
	}
	if block.BlockTime == nil || *block.BlockTime != blockTime {
		t.Errorf("expected blockTime %d, got %v", blockTime, block.BlockTime)
	}
	if len(block.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(block.Transactions))
	}

	tx := block.Transactions[0]
	if tx.Signature() != "sig1" {
		t.Errorf("expected sig1, got %s", tx.Signature())
	}
	if tx.Meta == nil || tx.Meta.Fee == nil || *tx.Meta.Fee != 5000 {
		t.Fatalf("expected fee 5000, got %+v", tx.Meta)
	}
	if len(tx.Meta.PostBalances) != 3 || tx.Meta.PostBalances[1] != 2_000_000_000 {
		t.Errorf("unexpected post balances %v", tx.Meta.PostBalances)
	}
	if len(tx.Message.ProgramIDs) != 1 || tx.Message.ProgramIDs[0] != "11111111111111111111111111111111" {
		t.Errorf("unexpected program IDs %v", tx.Message.ProgramIDs)
	}

	vote := block.Transactions[1]
	if len(vote.Message.AccountKeys) != 2 || vote.Message.AccountKeys[1] != "Vote111111111111111111111111111111111111111" {
		t.Errorf("object account keys not decoded: %v", vote.Message.AccountKeys)
	}
	if !vote.Failed() {
		t.Error("expected failed transaction")
	}
	if vote.Meta.PreBalances != nil {
		t.Error("absent balances should decode as nil")
	}
}

func TestHTTPClient_GetBlock_SkipsMalformedTransaction(t *testing.T) {
	server := rpcServer(t, "getBlock", map[string]interface{}{
		"blockHeight": int64(250000000),
		"transactions": []interface{}{
			map[string]interface{}{
				"transaction": map[string]interface{}{"signatures": []string{"bad"}},
				"meta":        map[string]interface{}{"fee": 5000.5},
			},
			map[string]interface{}{
				"transaction": map[string]interface{}{"signatures": []string{"good"}},
				"meta":        map[string]interface{}{"fee": 5000},
			},
			"not a transaction",
		},
	})
	defer server.Close()

	var logs bytes.Buffer
	client := NewHTTPClient(server.URL, WithLogger(log.New(&logs, "[solana] ", 0)))
	block, err := client.GetBlock(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}

	if len(block.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(block.Transactions))
	}
	if block.Transactions[0].Signature() != "good" {
		t.Errorf("expected good, got %s", block.Transactions[0].Signature())
	}
	if n := strings.Count(logs.String(), "skipping transaction"); n != 2 {
		t.Errorf("expected 2 skipped transactions logged, got %d: %s", n, logs.String())
	}
}

func TestHTTPClient_GetRecentPerformanceSamples(t *testing.T) {
	server := rpcServer(t, "getRecentPerformanceSamples", []map[string]interface{}{
		{"slot": 300, "numTransactions": 180000, "numSlots": 150, "samplePeriodSecs": 60, "numNonVoteTransactions": 40000},
		{"slot": 150, "numTransactions": 0, "numSlots": 150, "samplePeriodSecs": 60},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	samples, err := client.GetRecentPerformanceSamples(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRecentPerformanceSamples: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if !samples[0].Valid() || samples[1].Valid() {
		t.Error("unexpected sample validity")
	}
	if samples[0].TPS() != 3000 {
		t.Errorf("expected 3000 TPS, got %v", samples[0].TPS())
	}
}

func TestHTTPClient_GetVoteAccounts(t *testing.T) {
	server := rpcServer(t, "getVoteAccounts", map[string]interface{}{
		"current": []map[string]interface{}{
			{"votePubkey": "v1", "nodePubkey": "n1", "activatedStake": 100, "commission": 5},
			{"votePubkey": "v2", "nodePubkey": "n2", "activatedStake": 200, "commission": 7},
		},
		"delinquent": []map[string]interface{}{},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	accounts, err := client.GetVoteAccounts(context.Background())
	if err != nil {
		t.Fatalf("GetVoteAccounts: %v", err)
	}
	if len(accounts.Current) != 2 {
		t.Errorf("expected 2 current validators, got %d", len(accounts.Current))
	}
}

func TestHTTPClient_GetBalance(t *testing.T) {
	server := rpcServer(t, "getBalance", map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   int64(15_000_000_000_000),
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	lamports, err := client.GetBalance(context.Background(), "addr")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if lamports != 15_000_000_000_000 {
		t.Errorf("unexpected balance %d", lamports)
	}
}

func TestHTTPClient_GetTokenSupply(t *testing.T) {
	server := rpcServer(t, "getTokenSupply", map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value": map[string]interface{}{
			"amount":         "123456789000000",
			"decimals":       6,
			"uiAmountString": "123456789",
		},
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	supply, err := client.GetTokenSupply(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}

	d, err := supply.Supply()
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	if d.String() != "123456789" {
		t.Errorf("expected 123456789, got %s", d.String())
	}
}

func TestHTTPClient_Scalars(t *testing.T) {
	slotServer := rpcServer(t, "getSlot", int64(260000123))
	defer slotServer.Close()
	heightServer := rpcServer(t, "getBlockHeight", int64(240000000))
	defer heightServer.Close()

	slot, err := NewHTTPClient(slotServer.URL).GetSlot(context.Background())
	if err != nil || slot != 260000123 {
		t.Errorf("GetSlot: %d, %v", slot, err)
	}

	height, err := NewHTTPClient(heightServer.URL).GetBlockHeight(context.Background())
	if err != nil || height != 240000000 {
		t.Errorf("GetBlockHeight: %d, %v", height, err)
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32004,
				"message": "Block not available for slot 1",
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.GetBlock(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T", err)
	}
	if rpcErr.Code != -32004 {
		t.Errorf("expected code -32004, got %d", rpcErr.Code)
	}
	if calls.Load() != 1 {
		t.Errorf("RPC errors should not be retried, got %d calls", calls.Load())
	}
}

func TestHTTPClient_Retry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  int64(12345),
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithRetryDelay(10*time.Millisecond),
		WithMaxRetries(5),
	)

	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}

	if slot != 12345 {
		t.Errorf("expected slot 12345, got %d", slot)
	}

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestHTTPClient_MaxRetriesExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithRetryDelay(5*time.Millisecond),
		WithMaxRetries(2),
	)

	_, err := client.GetSlot(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestHTTPClient_ContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithRetryDelay(1*time.Second),
		WithMaxRetries(10),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.GetSlot(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestHTTPClient_WithCaller(t *testing.T) {
	var methods []string
	caller := CallerFunc(func(ctx context.Context, body []byte) ([]byte, error) {
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		methods = append(methods, req.Method)
		return []byte(`{"jsonrpc":"2.0","id":1,"result":42}`), nil
	})

	client := NewHTTPClient("", WithCaller(caller))
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if slot != 42 {
		t.Errorf("expected 42, got %d", slot)
	}
	if len(methods) != 1 || methods[0] != "getSlot" {
		t.Errorf("unexpected calls %v", methods)
	}
}

func TestHTTPClient_CallerRateLimitNotRetried(t *testing.T) {
	var calls atomic.Int32
	caller := CallerFunc(func(ctx context.Context, body []byte) ([]byte, error) {
		calls.Add(1)
		return nil, fmt.Errorf("all endpoints: %w", ErrRateLimited)
	})

	client := NewHTTPClient("", WithCaller(caller), WithRetryDelay(time.Millisecond), WithMaxRetries(3))
	_, err := client.GetSlot(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestHTTPClient_CallerTransportErrorRetried(t *testing.T) {
	var calls atomic.Int32
	caller := CallerFunc(func(ctx context.Context, body []byte) ([]byte, error) {
		if calls.Add(1) < 2 {
			return nil, errors.New("connection reset")
		}
		return []byte(`{"jsonrpc":"2.0","id":1,"result":7}`), nil
	})

	client := NewHTTPClient("", WithCaller(caller), WithRetryDelay(time.Millisecond))
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if slot != 7 || calls.Load() != 2 {
		t.Errorf("expected slot 7 after 2 calls, got %d after %d", slot, calls.Load())
	}
}
