package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/vecindario/adserver/internal/kv"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

const (
	runningCampaignsKey = "adserver:campaigns:running"
	categoryIndexPrefix = "adserver:campaigns:category:"
)

// CachedCampaignRepository wraps a campaign repository with a read-through
// cache for the running-campaign list and a per-category index. Writes go
// straight through and invalidate the cache.
type CachedCampaignRepository struct {
	repo   service.CampaignRepository
	store  kv.Store
	ttl    time.Duration
	logger log.Logger
}

// NewCachedCampaignRepository creates a new cached campaign repository
func NewCachedCampaignRepository(repo service.CampaignRepository, store kv.Store, ttl time.Duration, logger log.Logger) service.CampaignRepository {
	return &CachedCampaignRepository{
		repo:   repo,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// GetRunningCampaigns retrieves campaigns from cache first, then database.
func (cr *CachedCampaignRepository) GetRunningCampaigns(ctx context.Context) ([]models.Campaign, error) {
	if data, err := cr.store.Get(ctx, runningCampaignsKey); err == nil {
		var campaigns []models.Campaign
		if err := json.Unmarshal(data, &campaigns); err == nil {
			return campaigns, nil
		}
	}

	campaigns, err := cr.repo.GetRunningCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	// Fill the cache asynchronously so the response is never blocked.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := json.Marshal(campaigns)
		if err != nil {
			return
		}
		if err := cr.store.Set(cacheCtx, runningCampaignsKey, data, cr.ttl); err != nil {
			level.Warn(cr.logger).Log("msg", "failed to cache campaigns", "err", err)
		}

		cr.buildCategoryIndex(cacheCtx, campaigns)
	}()

	return campaigns, nil
}

// GetCampaignByID passes through to the underlying repository.
func (cr *CachedCampaignRepository) GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error) {
	return cr.repo.GetCampaignByID(ctx, id)
}

// CreateCampaign passes through and invalidates the cache.
func (cr *CachedCampaignRepository) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	if err := cr.repo.CreateCampaign(ctx, c); err != nil {
		return err
	}
	cr.invalidate(ctx)
	return nil
}

// UpdateCampaign passes through and invalidates the cache.
func (cr *CachedCampaignRepository) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	if err := cr.repo.UpdateCampaign(ctx, c); err != nil {
		return err
	}
	cr.invalidate(ctx)
	return nil
}

// DeleteCampaign passes through and invalidates the cache.
func (cr *CachedCampaignRepository) DeleteCampaign(ctx context.Context, id string) error {
	if err := cr.repo.DeleteCampaign(ctx, id); err != nil {
		return err
	}
	cr.invalidate(ctx)
	return nil
}

// IncrementCounter passes through. Counter drift in the cached list is
// tolerable for the TTL window; the budget check runs against cached values
// at worst one refresh behind.
func (cr *CachedCampaignRepository) IncrementCounter(ctx context.Context, id string, event models.TrackEvent) error {
	return cr.repo.IncrementCounter(ctx, id, event)
}

// buildCategoryIndex caches campaign IDs per targeted category for fast
// cross-promotion lookups.
func (cr *CachedCampaignRepository) buildCategoryIndex(ctx context.Context, campaigns []models.Campaign) {
	index := make(map[string][]string)
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsActive() {
			continue
		}
		for _, category := range c.Categories {
			index[category] = append(index[category], c.ID)
		}
	}

	// Index TTL slightly longer than the list TTL.
	indexTTL := cr.ttl + time.Minute
	for category, ids := range index {
		data, err := json.Marshal(ids)
		if err != nil {
			continue
		}
		if err := cr.store.Set(ctx, categoryIndexPrefix+category, data, indexTTL); err != nil {
			level.Warn(cr.logger).Log("msg", "failed to cache category index", "category", category, "err", err)
		}
	}
}

func (cr *CachedCampaignRepository) invalidate(ctx context.Context) {
	if err := cr.store.Delete(ctx, runningCampaignsKey); err != nil {
		level.Warn(cr.logger).Log("msg", "failed to invalidate campaign cache", "err", err)
	}
}
