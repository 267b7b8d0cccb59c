package dashboard

import (
	"context"
	"fmt"
	"time"

	"solanalysis/internal/analytics"
	"solanalysis/internal/storage"
)

// SaveSnapshot stores the aggregator snapshot in the cache. It is a no-op
// without a cache.
func (r *Runner) SaveSnapshot(ctx context.Context) error {
	if r.opts.Cache == nil {
		return nil
	}

	snap := r.agg.Snapshot()
	ttl := r.agg.SnapshotMaxAge()
	if err := storage.SetJSON(ctx, r.opts.Cache, SnapshotKey, snap, ttl); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	r.mu.Lock()
	r.lastSnapshot = r.opts.Now()
	r.mu.Unlock()
	return nil
}

// RestoreSnapshot loads the cached snapshot into the aggregator. Snapshots
// older than the aggregator's maximum age are rejected.
func (r *Runner) RestoreSnapshot(ctx context.Context) error {
	if r.opts.Cache == nil {
		return storage.ErrNotFound
	}

	var snap analytics.Snapshot
	if err := storage.GetJSON(ctx, r.opts.Cache, SnapshotKey, &snap); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := r.agg.Restore(snap); err != nil {
		return err
	}

	r.logger.Printf("Restored snapshot from %v ago", snap.Age(r.opts.Now()).Round(time.Second))
	return nil
}
