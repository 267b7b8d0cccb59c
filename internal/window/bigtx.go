package window

import (
	"sort"
	"time"

	"solanalysis/internal/domain"
)

// Big transaction tracking defaults.
const (
	DefaultBigTxTTL   = time.Hour
	DefaultBigTxLimit = 5
)

// BigTxTracker holds large transactions for a fixed time window,
// sorted by amount descending.
type BigTxTracker struct {
	ttl     time.Duration
	limit   int
	entries []domain.BigTransaction
	index   map[string]struct{}
}

// NewBigTxTracker creates a tracker that keeps entries for ttl and
// displays the top limit of them.
func NewBigTxTracker(ttl time.Duration, limit int) *BigTxTracker {
	if ttl <= 0 {
		ttl = DefaultBigTxTTL
	}
	if limit <= 0 {
		limit = DefaultBigTxLimit
	}
	return &BigTxTracker{
		ttl:   ttl,
		limit: limit,
		index: make(map[string]struct{}),
	}
}

// Add tracks tx. It returns false if a transaction with the same
// signature is already tracked.
func (t *BigTxTracker) Add(tx domain.BigTransaction) bool {
	if _, ok := t.index[tx.Signature]; ok {
		return false
	}
	t.index[tx.Signature] = struct{}{}
	t.entries = append(t.entries, tx)
	return true
}

// Refresh drops entries seen ttl or more before now and re-sorts the rest
// by amount, largest first. It returns the number of dropped entries.
func (t *BigTxTracker) Refresh(now time.Time) int {
	cutoff := now.Add(-t.ttl).UnixMilli()

	kept := t.entries[:0]
	dropped := 0
	for _, e := range t.entries {
		if e.Timestamp > cutoff {
			kept = append(kept, e)
			continue
		}
		delete(t.index, e.Signature)
		dropped++
	}
	t.entries = kept

	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Amount > t.entries[j].Amount
	})
	return dropped
}

// Top returns a copy of the largest tracked transactions, at most limit.
func (t *BigTxTracker) Top() []domain.BigTransaction {
	n := len(t.entries)
	if n > t.limit {
		n = t.limit
	}
	out := make([]domain.BigTransaction, n)
	copy(out, t.entries[:n])
	return out
}

// All returns a copy of every tracked transaction in current order.
func (t *BigTxTracker) All() []domain.BigTransaction {
	out := make([]domain.BigTransaction, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of tracked transactions.
func (t *BigTxTracker) Len() int {
	return len(t.entries)
}

// Reset drops every entry.
func (t *BigTxTracker) Reset() {
	t.entries = nil
	t.index = make(map[string]struct{})
}
