package dashboard

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"solanalysis/internal/analytics"
	"solanalysis/internal/classify"
	"solanalysis/internal/observability"
	"solanalysis/internal/solana"
)

// networkStats holds what one round of concurrent fetches returned. A nil
// field means that fetch failed.
type networkStats struct {
	samples    []solana.PerformanceSample
	height     *int64
	price      *float64
	validators *int
}

// NetworkCycle refreshes network stats, the live feed, big transactions
// and the block time. Failed fetches degrade to placeholders.
func (r *Runner) NetworkCycle(ctx context.Context) {
	if !r.begin(CycleNetwork) {
		r.logger.Println("Network cycle already running, skipping...")
		return
	}
	defer r.end(CycleNetwork)

	start := r.opts.Now()
	stats := r.fetchNetworkStats(ctx)
	r.applyNetworkStats(stats, start)

	status := "ok"
	if err := r.recordLiveTransactions(ctx); err != nil {
		r.logger.Printf("Live transactions error: %v", err)
		status = "error"
	}
	if err := r.trackBigTransactions(ctx); err != nil {
		r.logger.Printf("Big transactions error: %v", err)
		status = "error"
	}
	r.recordBlockTime(start)

	net := r.agg.Network()
	observability.UpdateNetwork(net.TPS, net.BlockHeight)

	finished := r.opts.Now()
	observability.RecordCycle(CycleNetwork, status, finished.Sub(start).Seconds(), finished.Unix())
}

// fetchNetworkStats runs the four stat fetches concurrently.
func (r *Runner) fetchNetworkStats(ctx context.Context) networkStats {
	var (
		g     errgroup.Group
		stats networkStats
	)

	g.Go(func() error {
		samples, err := r.rpc.GetRecentPerformanceSamples(ctx, DefaultPerfSamples)
		if err != nil {
			r.logger.Printf("Performance samples error: %v", err)
			return nil
		}
		stats.samples = samples
		return nil
	})
	g.Go(func() error {
		height, err := r.rpc.GetBlockHeight(ctx)
		if err != nil {
			r.logger.Printf("Block height error: %v", err)
			return nil
		}
		stats.height = &height
		return nil
	})
	g.Go(func() error {
		if r.opts.Prices == nil {
			return nil
		}
		q, err := r.opts.Prices.Lookup(ctx, r.opts.Currency)
		if err != nil {
			r.logger.Printf("Price error: %v", err)
			return nil
		}
		stats.price = &q.Price
		return nil
	})
	g.Go(func() error {
		accounts, err := r.rpc.GetVoteAccounts(ctx)
		if err != nil {
			r.logger.Printf("Vote accounts error: %v", err)
			return nil
		}
		n := len(accounts.Current)
		stats.validators = &n
		return nil
	})

	_ = g.Wait()
	return stats
}

func (r *Runner) applyNetworkStats(stats networkStats, at time.Time) {
	if tps, first, ok := currentTPS(stats.samples); ok {
		r.agg.RecordTPS(tps, at)
		r.agg.AddHourlyTransactions(first)
	} else {
		r.agg.MarkUnavailable(analytics.MetricTPS)
	}
	// Load follows the last known TPS, so the activity chart advances every cycle.
	r.agg.RecordNetworkLoad(at)

	if stats.height != nil {
		r.agg.SetBlockHeight(*stats.height)
	} else {
		r.agg.MarkUnavailable(analytics.MetricBlockHeight)
	}

	if stats.price != nil && *stats.price > 0 {
		r.agg.RecordPrice(*stats.price, at)
	} else if r.opts.Prices != nil {
		r.agg.MarkUnavailable(analytics.MetricPrice)
	}

	if stats.validators != nil {
		r.agg.SetValidators(*stats.validators)
	} else {
		r.agg.MarkUnavailable(analytics.MetricValidators)
	}
}

// currentTPS estimates TPS from the valid samples: the newest sample,
// or the average when the newest rounds to zero. It also returns the
// newest sample's transaction count.
func currentTPS(samples []solana.PerformanceSample) (tps int64, newest int64, ok bool) {
	var valid []solana.PerformanceSample
	for _, s := range samples {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return 0, 0, false
	}

	var sum float64
	for _, s := range valid {
		sum += s.TPS()
	}
	avg := int64(math.Round(sum / float64(len(valid))))

	tps = int64(math.Round(valid[0].TPS()))
	if tps <= 0 {
		tps = avg
	}
	return tps, valid[0].NumTransactions, true
}

// recentBlock fetches a block a random distance below the current slot.
func (r *Runner) recentBlock(ctx context.Context, spread int) (*solana.Block, error) {
	slot, err := r.rpc.GetSlot(ctx)
	if err != nil {
		return nil, err
	}
	target := slot - int64(r.opts.Intn(spread))
	if target < 1 {
		target = 1
	}
	return r.rpc.GetBlock(ctx, target)
}

// recordLiveTransactions records up to LiveTxLimit unseen non-vote
// transactions from a recent block.
func (r *Runner) recordLiveTransactions(ctx context.Context) error {
	block, err := r.recentBlock(ctx, DefaultLiveSlotSpread)
	if err != nil {
		return err
	}

	now := r.opts.Now()
	recorded := 0
	for i := range block.Transactions {
		if recorded >= r.opts.LiveTxLimit {
			break
		}
		tx := &block.Transactions[i]
		if classify.IsVote(tx) {
			continue
		}
		obs := classify.Observe(tx, now)
		if r.agg.RecordTransaction(obs) {
			observability.RecordTransactionClassified(string(obs.Label))
			recorded++
		}
	}
	return nil
}

// trackBigTransactions feeds successful large transfers of a recent block
// to the tracker and refreshes the top list.
func (r *Runner) trackBigTransactions(ctx context.Context) error {
	now := r.opts.Now()
	defer func() {
		top := r.agg.RefreshBigTransactions(now)
		observability.UpdateBigTransactions(len(top))
	}()

	block, err := r.recentBlock(ctx, DefaultBigTxSlotSpread)
	if err != nil {
		return err
	}

	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if tx.Meta == nil || tx.Failed() {
			continue
		}
		r.agg.TrackBigTransaction(classify.Observe(tx, now))
	}
	return nil
}

// recordBlockTime records the average slot interval seen on the slot feed
// since the last cycle, or the time since the last cycle without one.
func (r *Runner) recordBlockTime(now time.Time) {
	r.mu.Lock()
	intervals := r.slotIntervals
	r.slotIntervals = nil
	last := r.lastCycle
	r.lastCycle = now
	r.mu.Unlock()

	if len(intervals) > 0 {
		var sum time.Duration
		for _, d := range intervals {
			sum += d
		}
		r.agg.RecordBlockInterval(sum/time.Duration(len(intervals)), now)
		return
	}

	if !last.IsZero() && now.After(last) {
		r.agg.RecordBlockInterval(now.Sub(last), now)
	}
}

// followSlots collects intervals between slot notifications until ctx is
// done. A failed subscription leaves block time on cycle intervals.
func (r *Runner) followSlots(ctx context.Context) error {
	ch, err := r.opts.Slots.SubscribeSlots(ctx)
	if err != nil {
		r.logger.Printf("Slot subscription failed, using cycle intervals: %v", err)
		return nil
	}

	r.mu.Lock()
	r.slotFeed = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.slotFeed = false
		r.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				r.logger.Println("Slot feed closed, using cycle intervals")
				return nil
			}
			r.observeSlot(r.opts.Now())
		}
	}
}

// maxSlotIntervals bounds intervals buffered between two cycles.
const maxSlotIntervals = 1000

func (r *Runner) observeSlot(at time.Time) {
	observability.RecordSlotNotification()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.lastSlotAt.IsZero() && at.After(r.lastSlotAt) && len(r.slotIntervals) < maxSlotIntervals {
		r.slotIntervals = append(r.slotIntervals, at.Sub(r.lastSlotAt))
	}
	r.lastSlotAt = at
}
