package solana

import "context"

// RPCClient defines the Solana JSON-RPC methods the dashboard reads.
type RPCClient interface {
	// GetBlock retrieves a block with full transaction details.
	GetBlock(ctx context.Context, slot int64) (*Block, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetBlockHeight retrieves the current block height.
	GetBlockHeight(ctx context.Context) (int64, error)

	// GetRecentPerformanceSamples retrieves up to limit recent samples, newest first.
	GetRecentPerformanceSamples(ctx context.Context, limit int) ([]PerformanceSample, error)

	// GetVoteAccounts retrieves current and delinquent vote accounts.
	GetVoteAccounts(ctx context.Context) (*VoteAccounts, error)

	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (int64, error)

	// GetTokenSupply retrieves the supply of an SPL token mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error)
}

// Caller sends one JSON-RPC request body and returns the raw response body.
// It lets HTTPClient run over something other than a direct HTTP POST,
// such as the failover proxy.
type Caller interface {
	Call(ctx context.Context, body []byte) ([]byte, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, body []byte) ([]byte, error)

// Call calls f(ctx, body).
func (f CallerFunc) Call(ctx context.Context, body []byte) ([]byte, error) {
	return f(ctx, body)
}
