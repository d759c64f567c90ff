package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vecindario/adserver/internal/kv"
	"github.com/vecindario/adserver/internal/models"
)

const snapshotKeyPrefix = "adserver:snapshot:"

// Stats holds cache performance statistics
type Stats struct {
	Hits        int64
	Misses      int64
	Errors      int64
	HitRatio    float64
	TotalOps    int64
	LastUpdated time.Time
}

// SnapshotCache stores per-ad snapshots across one or more key-value tiers
// (memory first, then Redis). Reads never fail the caller: any store error or
// decode failure is treated as a miss. Writes are last-write-wins with no
// expiration; a snapshot is only ever overwritten.
type SnapshotCache struct {
	tiers []kv.Store
	stats Stats
	mu    sync.RWMutex
}

// NewSnapshotCache creates a snapshot cache over the given store tiers,
// ordered fastest first.
func NewSnapshotCache(tiers ...kv.Store) *SnapshotCache {
	return &SnapshotCache{
		tiers: tiers,
		stats: Stats{LastUpdated: time.Now()},
	}
}

// Get reads the snapshot for an ad. A hit found in a slower tier warms the
// faster tiers in front of it.
func (sc *SnapshotCache) Get(ctx context.Context, adID string) (*models.Snapshot, bool) {
	key := snapshotKeyPrefix + adID

	for i, tier := range sc.tiers {
		data, err := tier.Get(ctx, key)
		if err != nil {
			continue
		}

		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// Corrupt value: a miss, never an error for the caller.
			sc.recordError()
			continue
		}

		// Warm faster tiers
		for j := 0; j < i; j++ {
			sc.tiers[j].Set(ctx, key, data, 0)
		}

		sc.recordHit()
		return &snap, true
	}

	sc.recordMiss()
	return nil, false
}

// Put overwrites the snapshot for an ad in every tier.
func (sc *SnapshotCache) Put(ctx context.Context, adID string, snap *models.Snapshot) error {
	key := snapshotKeyPrefix + adID

	data, err := json.Marshal(snap)
	if err != nil {
		sc.recordError()
		return err
	}

	var lastErr error
	for _, tier := range sc.tiers {
		if err := tier.Set(ctx, key, data, 0); err != nil {
			sc.recordError()
			lastErr = err
		}
	}
	return lastErr
}

// Delete removes the snapshot for an ad from every tier.
func (sc *SnapshotCache) Delete(ctx context.Context, adID string) error {
	key := snapshotKeyPrefix + adID

	var lastErr error
	for _, tier := range sc.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// GetStats returns cache statistics
func (sc *SnapshotCache) GetStats() Stats {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	stats := sc.stats
	if stats.TotalOps > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(stats.TotalOps)
	}
	return stats
}

// Helper methods for statistics
func (sc *SnapshotCache) recordHit() {
	sc.mu.Lock()
	sc.stats.Hits++
	sc.stats.TotalOps++
	sc.mu.Unlock()
}

func (sc *SnapshotCache) recordMiss() {
	sc.mu.Lock()
	sc.stats.Misses++
	sc.stats.TotalOps++
	sc.mu.Unlock()
}

func (sc *SnapshotCache) recordError() {
	sc.mu.Lock()
	sc.stats.Errors++
	sc.mu.Unlock()
}
