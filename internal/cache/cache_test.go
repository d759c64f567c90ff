package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecindario/adserver/internal/kv"
	"github.com/vecindario/adserver/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Ad: &models.Ad{
			ID:    "tamales-01",
			Title: "Tamales caseros",
		},
		Variants: []models.Variant{
			{Type: "Chico", Price: 25, MinQuantity: 2, Slug: "chico"},
		},
		Timestamp: time.Now(),
	}
}

func TestSnapshotCache_PutGet(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)
	ctx := context.Background()

	require.NoError(t, sc.Put(ctx, "tamales-01", sampleSnapshot()))

	snap, hit := sc.Get(ctx, "tamales-01")
	require.True(t, hit)
	assert.Equal(t, "tamales-01", snap.Ad.ID)
	assert.Len(t, snap.Variants, 1)

	stats := sc.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestSnapshotCache_Miss(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)

	_, hit := sc.Get(context.Background(), "unknown")
	assert.False(t, hit)

	stats := sc.GetStats()
	assert.Equal(t, int64(1), stats.Misses)
}

func TestSnapshotCache_CorruptValueIsMiss(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "adserver:snapshot:bad", []byte("{not json"), 0))

	_, hit := sc.Get(ctx, "bad")
	assert.False(t, hit)

	stats := sc.GetStats()
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestSnapshotCache_LastWriteWins(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)
	ctx := context.Background()

	first := sampleSnapshot()
	require.NoError(t, sc.Put(ctx, "tamales-01", first))

	second := sampleSnapshot()
	second.Ad.Title = "Tamales oaxaqueños"
	require.NoError(t, sc.Put(ctx, "tamales-01", second))

	snap, hit := sc.Get(ctx, "tamales-01")
	require.True(t, hit)
	assert.Equal(t, "Tamales oaxaqueños", snap.Ad.Title)
}

func TestSnapshotCache_SlowTierWarmsFastTier(t *testing.T) {
	fast := kv.NewMemoryStore()
	defer fast.Close()
	slow := kv.NewMemoryStore()
	defer slow.Close()

	// Seed only the slow tier, as if the process restarted with Redis warm.
	seed := NewSnapshotCache(slow)
	ctx := context.Background()
	require.NoError(t, seed.Put(ctx, "tamales-01", sampleSnapshot()))

	sc := NewSnapshotCache(fast, slow)
	_, hit := sc.Get(ctx, "tamales-01")
	require.True(t, hit)

	// The fast tier now holds the value too.
	_, err := fast.Get(ctx, "adserver:snapshot:tamales-01")
	assert.NoError(t, err)
}

func TestSnapshotCache_Delete(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)
	ctx := context.Background()

	require.NoError(t, sc.Put(ctx, "tamales-01", sampleSnapshot()))
	require.NoError(t, sc.Delete(ctx, "tamales-01"))

	_, hit := sc.Get(ctx, "tamales-01")
	assert.False(t, hit)
}

func TestSnapshotCache_HitRatio(t *testing.T) {
	store := kv.NewMemoryStore()
	defer store.Close()
	sc := NewSnapshotCache(store)
	ctx := context.Background()

	require.NoError(t, sc.Put(ctx, "a", sampleSnapshot()))

	sc.Get(ctx, "a")
	sc.Get(ctx, "a")
	sc.Get(ctx, "missing")
	sc.Get(ctx, "missing")

	stats := sc.GetStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRatio)
}
