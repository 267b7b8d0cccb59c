package stub

import (
	"context"
	"errors"
	"sync"

	"solanalysis/internal/solana"
)

// ErrNotFound is returned when a block, balance or supply is not found.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// It is safe for concurrent use.
type RPCClient struct {
	mu sync.Mutex

	Slot        int64
	BlockHeight int64
	Samples     []solana.PerformanceSample
	Validators  *solana.VoteAccounts
	Blocks      map[int64]*solana.Block
	Balances    map[string]int64
	Supplies    map[string]*solana.TokenSupply

	// Errors makes the named method fail with the given error.
	Errors map[string]error

	calls map[string]int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Blocks:   make(map[int64]*solana.Block),
		Balances: make(map[string]int64),
		Supplies: make(map[string]*solana.TokenSupply),
		Errors:   make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (c *RPCClient) enter(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	return c.Errors[method]
}

// Calls returns how many times method was called.
func (c *RPCClient) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Fail makes method return err until cleared with a nil err.
func (c *RPCClient) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.Errors, method)
		return
	}
	c.Errors[method] = err
}

// GetBlock retrieves a block by slot from the stub store.
func (c *RPCClient) GetBlock(_ context.Context, slot int64) (*solana.Block, error) {
	if err := c.enter("getBlock"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	block, ok := c.Blocks[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return block, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	if err := c.enter("getSlot"); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Slot, nil
}

// GetBlockHeight returns the configured block height.
func (c *RPCClient) GetBlockHeight(_ context.Context) (int64, error) {
	if err := c.enter("getBlockHeight"); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.BlockHeight, nil
}

// GetRecentPerformanceSamples returns the configured samples, at most limit.
func (c *RPCClient) GetRecentPerformanceSamples(_ context.Context, limit int) ([]solana.PerformanceSample, error) {
	if err := c.enter("getRecentPerformanceSamples"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	samples := c.Samples
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return append([]solana.PerformanceSample(nil), samples...), nil
}

// GetVoteAccounts returns the configured vote accounts.
func (c *RPCClient) GetVoteAccounts(_ context.Context) (*solana.VoteAccounts, error) {
	if err := c.enter("getVoteAccounts"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Validators == nil {
		return &solana.VoteAccounts{}, nil
	}
	return c.Validators, nil
}

// GetBalance returns the stored balance for pubkey.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (int64, error) {
	if err := c.enter("getBalance"); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lamports, ok := c.Balances[pubkey]
	if !ok {
		return 0, ErrNotFound
	}
	return lamports, nil
}

// GetTokenSupply returns the stored supply for mint.
func (c *RPCClient) GetTokenSupply(_ context.Context, mint string) (*solana.TokenSupply, error) {
	if err := c.enter("getTokenSupply"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	supply, ok := c.Supplies[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return supply, nil
}

// AddBlock adds a block to the stub store.
func (c *RPCClient) AddBlock(block *solana.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Blocks[block.Slot] = block
}

// SetSlot sets the current slot.
func (c *RPCClient) SetSlot(slot int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Slot = slot
}

var _ solana.RPCClient = (*RPCClient)(nil)
