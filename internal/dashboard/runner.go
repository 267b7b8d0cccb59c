// Package dashboard runs the refresh cycles that feed the analytics
// aggregator from the Solana RPC: network stats, live and big transactions,
// block time, whale wallets and popular tokens.
package dashboard

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"solanalysis/internal/analytics"
	"solanalysis/internal/price"
	"solanalysis/internal/solana"
	"solanalysis/internal/storage"
)

// Defaults for Options.
const (
	DefaultNetworkInterval  = 10 * time.Second
	DefaultHolderInterval   = 60 * time.Second
	DefaultSnapshotInterval = 30 * time.Second
	DefaultLiveTxLimit      = 10
	DefaultLiveSlotSpread   = 3  // live feed reads slot - [0,3)
	DefaultBigTxSlotSpread  = 10 // big transactions read slot - [0,10)
	DefaultWhaleMinSOL      = 10_000
	DefaultWalletLimit      = 4
	DefaultTokenLimit       = 4
	DefaultPerfSamples      = 10
)

// SnapshotKey is the cache key of the saved aggregator snapshot.
const SnapshotKey = "analytics:snapshot"

// Cycle names used in logs, metrics and Status.
const (
	CycleNetwork = "network"
	CycleHolders = "holders"
)

// ErrMissingDependency is returned by NewRunner when a required
// collaborator is nil.
var ErrMissingDependency = errors.New("missing dependency")

// PriceSource resolves the SOL price.
type PriceSource interface {
	Lookup(ctx context.Context, currency string) (price.Quote, error)
}

// Options configures a Runner.
type Options struct {
	RPC        solana.RPCClient
	Slots      solana.WSClient // optional slot feed for block time
	Prices     PriceSource     // optional
	Aggregator *analytics.Aggregator
	Cache      storage.Cache // optional snapshot persistence
	Currency   string

	Wallets []WalletCandidate
	Tokens  []TokenCandidate

	NetworkInterval  time.Duration
	HolderInterval   time.Duration
	SnapshotInterval time.Duration
	LiveTxLimit      int
	WhaleMinSOL      float64
	WalletLimit      int
	TokenLimit       int

	Intn   func(n int) int // random slot offsets
	Now    func() time.Time
	Logger *log.Logger
}

// Runner drives the dashboard refresh cycles.
type Runner struct {
	opts   Options
	rpc    solana.RPCClient
	agg    *analytics.Aggregator
	logger *log.Logger

	mu             sync.Mutex
	started        time.Time
	lastCycle      time.Time // end of the previous network cycle
	slotIntervals  []time.Duration
	lastSlotAt     time.Time
	slotFeed       bool
	networkRunning bool
	holderRunning  bool
	networkRuns    int
	holderRuns     int
	lastNetworkRun time.Time
	lastHolderRun  time.Time
	lastSnapshot   time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.RPC == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("rpc client"))
	}
	if opts.Aggregator == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("aggregator"))
	}

	if opts.Currency == "" {
		opts.Currency = price.DefaultCurrency
	}
	if opts.Wallets == nil {
		opts.Wallets = DefaultWallets
	}
	if opts.Tokens == nil {
		opts.Tokens = DefaultTokens
	}
	if opts.NetworkInterval <= 0 {
		opts.NetworkInterval = DefaultNetworkInterval
	}
	if opts.HolderInterval <= 0 {
		opts.HolderInterval = DefaultHolderInterval
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = DefaultSnapshotInterval
	}
	if opts.LiveTxLimit <= 0 {
		opts.LiveTxLimit = DefaultLiveTxLimit
	}
	if opts.WhaleMinSOL <= 0 {
		opts.WhaleMinSOL = DefaultWhaleMinSOL
	}
	if opts.WalletLimit <= 0 {
		opts.WalletLimit = DefaultWalletLimit
	}
	if opts.TokenLimit <= 0 {
		opts.TokenLimit = DefaultTokenLimit
	}
	if opts.Intn == nil {
		opts.Intn = rand.IntN
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Runner{
		opts:   opts,
		rpc:    opts.RPC,
		agg:    opts.Aggregator,
		logger: opts.Logger,
	}, nil
}

// Run restores the last snapshot, then runs every cycle on its interval
// until ctx is cancelled. A final snapshot is saved on the way out.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.started = r.opts.Now()
	r.lastCycle = r.started
	r.mu.Unlock()

	if err := r.RestoreSnapshot(ctx); err != nil {
		r.logger.Printf("No snapshot restored: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if r.opts.Slots != nil {
		g.Go(func() error {
			return r.followSlots(ctx)
		})
	}
	g.Go(func() error {
		return r.schedule(ctx, CycleNetwork, r.opts.NetworkInterval, r.NetworkCycle)
	})
	g.Go(func() error {
		return r.schedule(ctx, CycleHolders, r.opts.HolderInterval, r.HolderCycle)
	})
	g.Go(func() error {
		return r.schedule(ctx, "snapshot", r.opts.SnapshotInterval, func(ctx context.Context) {
			if err := r.SaveSnapshot(ctx); err != nil {
				r.logger.Printf("Snapshot save error: %v", err)
			}
		})
	})

	err := g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := r.SaveSnapshot(saveCtx); serr != nil {
		r.logger.Printf("Final snapshot save error: %v", serr)
	}
	return err
}

// schedule runs fn immediately, then on every tick.
func (r *Runner) schedule(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) error {
	r.logger.Printf("Starting %s cycle (interval: %v)...", name, interval)

	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// begin marks a cycle as running. It returns false when the cycle is
// already in flight.
func (r *Runner) begin(cycle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	running := &r.networkRunning
	if cycle == CycleHolders {
		running = &r.holderRunning
	}
	if *running {
		return false
	}
	*running = true
	return true
}

func (r *Runner) end(cycle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.Now()
	switch cycle {
	case CycleNetwork:
		r.networkRunning = false
		r.networkRuns++
		r.lastNetworkRun = now
	case CycleHolders:
		r.holderRunning = false
		r.holderRuns++
		r.lastHolderRun = now
	}
}

// Status is the runner state reported by /status.
type Status struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	Started        time.Time `json:"started"`
	NetworkRuns    int       `json:"network_runs"`
	HolderRuns     int       `json:"holder_runs"`
	LastNetworkRun time.Time `json:"last_network_run,omitempty"`
	LastHolderRun  time.Time `json:"last_holder_run,omitempty"`
	LastSnapshot   time.Time `json:"last_snapshot,omitempty"`
	NetworkRunning bool      `json:"network_running"`
	HolderRunning  bool      `json:"holder_running"`
	SlotFeed       bool      `json:"slot_feed"`
}

// Status returns a copy of the runner state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	var uptime time.Duration
	if !r.started.IsZero() {
		uptime = r.opts.Now().Sub(r.started)
	}

	return Status{
		Status:         "running",
		Uptime:         uptime.Round(time.Second).String(),
		Started:        r.started,
		NetworkRuns:    r.networkRuns,
		HolderRuns:     r.holderRuns,
		LastNetworkRun: r.lastNetworkRun,
		LastHolderRun:  r.lastHolderRun,
		LastSnapshot:   r.lastSnapshot,
		NetworkRunning: r.networkRunning,
		HolderRunning:  r.holderRunning,
		SlotFeed:       r.slotFeed,
	}
}
