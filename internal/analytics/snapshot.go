package analytics

import (
	"errors"
	"fmt"
	"time"

	"solanalysis/internal/domain"
	"solanalysis/internal/window"
)

// Snapshot freshness errors.
var (
	ErrSnapshotExpired  = errors.New("analytics snapshot expired")
	ErrSnapshotInFuture = errors.New("analytics snapshot timestamp in the future")
)

// Snapshot is the persisted form of the chart state.
type Snapshot struct {
	Timestamp       int64                   `json:"timestamp"` // ms
	TPSHistory      []window.Point          `json:"tpsHistory"`
	PriceHistory    []window.Point          `json:"priceHistory"`
	ActivityData    []window.Point          `json:"activityData"`
	BlockTimeData   []window.Point          `json:"blockTimeData"`
	FeeData         []FeePoint              `json:"feeData"`
	TxTypeStats     map[domain.Label]int64  `json:"txTypeStats"`
	NetworkStats    domain.NetworkStats     `json:"networkStats"`
	BigTransactions []domain.BigTransaction `json:"bigTransactions"`
}

// Age returns how old s is at now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.Timestamp))
}

// Check reports whether s is usable at now: stamped no later than now and
// younger than maxAge.
func (s Snapshot) Check(now time.Time, maxAge time.Duration) error {
	age := s.Age(now)
	switch {
	case age < 0:
		return fmt.Errorf("snapshot stamped %s ahead: %w", (-age).Round(time.Second), ErrSnapshotInFuture)
	case age >= maxAge:
		return fmt.Errorf("snapshot of age %s: %w", age.Round(time.Second), ErrSnapshotExpired)
	}
	return nil
}

// SnapshotMaxAge returns the age beyond which Restore rejects a snapshot.
func (a *Aggregator) SnapshotMaxAge() time.Duration {
	return a.opts.SnapshotMaxAge
}

// Snapshot captures the current chart state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := make(map[domain.Label]int64, len(a.typeCounts))
	for l, n := range a.typeCounts {
		counts[l] = n
	}

	return Snapshot{
		Timestamp:       a.now().UnixMilli(),
		TPSHistory:      a.tps.Items(),
		PriceHistory:    a.price.Items(),
		ActivityData:    a.activity.Items(),
		BlockTimeData:   a.blockTime.Items(),
		FeeData:         a.fees.Items(),
		TxTypeStats:     counts,
		NetworkStats:    a.network,
		BigTransactions: a.bigTx.All(),
	}
}

// Restore loads s into the aggregator, replacing chart history, type
// counts and network counters. Snapshots older than the configured max
// age or stamped in the future are rejected.
func (a *Aggregator) Restore(s Snapshot) error {
	now := a.now()
	if err := s.Check(now, a.opts.SnapshotMaxAge); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	a.mu.Lock()
	a.tps.Fill(s.TPSHistory)
	a.price.Fill(s.PriceHistory)
	a.activity.Fill(s.ActivityData)
	a.blockTime.Fill(s.BlockTimeData)
	a.fees.Fill(s.FeeData)
	for l := range a.typeCounts {
		a.typeCounts[l] = 0
	}
	for l, n := range s.TxTypeStats {
		if !l.Valid() {
			l = domain.LabelOther
		}
		a.typeCounts[l] += n
	}
	a.network = s.NetworkStats
	for _, tx := range s.BigTransactions {
		a.bigTx.Add(tx)
	}
	a.bigTx.Refresh(now)

	events := []Event{
		pointsEvent(SeriesTPS, a.tps),
		pointsEvent(SeriesPrice, a.price),
		pointsEvent(SeriesActivity, a.activity),
		pointsEvent(SeriesBlockTime, a.blockTime),
		a.feesEventLocked(),
		a.typesEventLocked(),
		{Type: EventBigTx, Data: a.bigTx.Top()},
		a.statsEventLocked(),
	}
	a.mu.Unlock()

	a.publish(events...)
	a.logger.Printf("Restored analytics snapshot (%d TPS points, %d big transactions)", len(s.TPSHistory), len(s.BigTransactions))
	return nil
}

// View is the full dashboard state served to browsers.
type View struct {
	Snapshot
	Display            map[string]string       `json:"display"`
	Analytics          AggregateStats          `json:"analytics"`
	LiveFeed           []domain.LiveFeedRow    `json:"liveFeed"`
	TopBigTransactions []domain.BigTransaction `json:"topBigTransactions"`
	Wallets            []domain.Wallet         `json:"wallets"`
	Tokens             []domain.Token          `json:"tokens"`
}

// View returns the full dashboard state.
func (a *Aggregator) View() View {
	snap := a.Snapshot()

	a.mu.Lock()
	defer a.mu.Unlock()
	return View{
		Snapshot:           snap,
		Display:            a.displayLocked(),
		Analytics:          a.statsLocked(),
		LiveFeed:           a.feed.Newest(),
		TopBigTransactions: a.bigTx.Top(),
		Wallets:            append([]domain.Wallet(nil), a.wallets...),
		Tokens:             append([]domain.Token(nil), a.tokens...),
	}
}
