package repository

import (
	"context"
	"time"

	"github.com/vecindario/adserver/internal/metrics"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// InstrumentedAdRepository wraps an ad repository with metrics collection
type InstrumentedAdRepository struct {
	next    service.AdRepository
	metrics *metrics.Metrics
}

// NewInstrumentedAdRepository creates a new instrumented ad repository
func NewInstrumentedAdRepository(repo service.AdRepository, m *metrics.Metrics) service.AdRepository {
	return &InstrumentedAdRepository{
		next:    repo,
		metrics: m,
	}
}

// GetAdByID implements service.AdRepository with metrics
func (r *InstrumentedAdRepository) GetAdByID(ctx context.Context, id string) (ad *models.Ad, err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("select", "ads")
		if err != nil {
			r.metrics.RecordDatabaseError("select", "query_error")
		}
	}(time.Now())

	ad, err = r.next.GetAdByID(ctx, id)
	return
}

// GetAdsBySeller implements service.AdRepository with metrics
func (r *InstrumentedAdRepository) GetAdsBySeller(ctx context.Context, phone string, excludeAdID string, limit int) (ads []models.Ad, err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("select", "ads")
		if err != nil {
			r.metrics.RecordDatabaseError("select", "query_error")
		}
	}(time.Now())

	ads, err = r.next.GetAdsBySeller(ctx, phone, excludeAdID, limit)
	return
}

// RecordView implements service.AdRepository with metrics
func (r *InstrumentedAdRepository) RecordView(ctx context.Context, adID string, requestID string) (err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("insert", "ad_views")
		if err != nil {
			r.metrics.RecordDatabaseError("insert", "query_error")
		}
	}(time.Now())

	err = r.next.RecordView(ctx, adID, requestID)
	return
}

// InstrumentedCampaignRepository wraps a campaign repository with metrics
// collection
type InstrumentedCampaignRepository struct {
	next    service.CampaignRepository
	metrics *metrics.Metrics
}

// NewInstrumentedCampaignRepository creates a new instrumented campaign repository
func NewInstrumentedCampaignRepository(repo service.CampaignRepository, m *metrics.Metrics) service.CampaignRepository {
	return &InstrumentedCampaignRepository{
		next:    repo,
		metrics: m,
	}
}

// GetRunningCampaigns implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) GetRunningCampaigns(ctx context.Context) (campaigns []models.Campaign, err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("select", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("select", "query_error")
		}
	}(time.Now())

	campaigns, err = r.next.GetRunningCampaigns(ctx)
	return
}

// GetCampaignByID implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) GetCampaignByID(ctx context.Context, id string) (c *models.Campaign, err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("select", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("select", "query_error")
		}
	}(time.Now())

	c, err = r.next.GetCampaignByID(ctx, id)
	return
}

// CreateCampaign implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) CreateCampaign(ctx context.Context, c *models.Campaign) (err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("insert", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("insert", "query_error")
		}
	}(time.Now())

	err = r.next.CreateCampaign(ctx, c)
	return
}

// UpdateCampaign implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) UpdateCampaign(ctx context.Context, c *models.Campaign) (err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("update", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("update", "query_error")
		}
	}(time.Now())

	err = r.next.UpdateCampaign(ctx, c)
	return
}

// DeleteCampaign implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) DeleteCampaign(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("delete", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("delete", "query_error")
		}
	}(time.Now())

	err = r.next.DeleteCampaign(ctx, id)
	return
}

// IncrementCounter implements service.CampaignRepository with metrics
func (r *InstrumentedCampaignRepository) IncrementCounter(ctx context.Context, id string, event models.TrackEvent) (err error) {
	defer func(begin time.Time) {
		r.metrics.RecordDatabaseQuery("update", "campaigns")
		if err != nil {
			r.metrics.RecordDatabaseError("update", "query_error")
		}
	}(time.Now())

	err = r.next.IncrementCounter(ctx, id, event)
	return
}
