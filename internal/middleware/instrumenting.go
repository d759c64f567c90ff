package middleware

import (
	"context"

	"github.com/vecindario/adserver/internal/metrics"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// adDetailInstrumentingMiddleware records ad-view and snapshot metrics around
// AdDetailService.
type adDetailInstrumentingMiddleware struct {
	metrics *metrics.Metrics
	next    service.AdDetailService
}

// NewAdDetailInstrumentingMiddleware creates a new instrumenting middleware
func NewAdDetailInstrumentingMiddleware(m *metrics.Metrics) func(service.AdDetailService) service.AdDetailService {
	return func(next service.AdDetailService) service.AdDetailService {
		return &adDetailInstrumentingMiddleware{
			metrics: m,
			next:    next,
		}
	}
}

// Cached implements service.AdDetailService
func (mw *adDetailInstrumentingMiddleware) Cached(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, bool) {
	detail, hit := mw.next.Cached(ctx, req)
	if hit {
		mw.metrics.RecordSnapshotRead("hit")
	} else {
		mw.metrics.RecordSnapshotRead("miss")
	}
	return detail, hit
}

// Resolve implements service.AdDetailService
func (mw *adDetailInstrumentingMiddleware) Resolve(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, error) {
	detail, err := mw.next.Resolve(ctx, req)
	if err == nil && detail != nil && detail.Ad != nil {
		mw.metrics.RecordAdView(detail.Ad.Category)
		if detail.FromCache {
			mw.metrics.RecordSnapshotRead("stale_served")
		}
		// Entries missing from the decoded set were skipped as malformed.
		if skipped := len(detail.Ad.EncodedVariants) - len(detail.Variants); skipped > 0 {
			mw.metrics.RecordVariantDecodeFailures(skipped)
		}
	}
	return detail, err
}

// Others implements service.AdDetailService
func (mw *adDetailInstrumentingMiddleware) Others(ctx context.Context, adID string) (*models.AdDetail, error) {
	return mw.next.Others(ctx, adID)
}

// promoInstrumentingMiddleware records campaign delivery metrics around
// PromoService.
type promoInstrumentingMiddleware struct {
	metrics *metrics.Metrics
	next    service.PromoService
}

// NewPromoInstrumentingMiddleware creates a new instrumenting middleware
func NewPromoInstrumentingMiddleware(m *metrics.Metrics) func(service.PromoService) service.PromoService {
	return func(next service.PromoService) service.PromoService {
		return &promoInstrumentingMiddleware{
			metrics: m,
			next:    next,
		}
	}
}

// PublicCampaigns implements service.PromoService
func (mw *promoInstrumentingMiddleware) PublicCampaigns(ctx context.Context, req models.PublicCampaignsRequest) ([]models.CampaignResponse, error) {
	campaigns, err := mw.next.PublicCampaigns(ctx, req)
	if err == nil {
		mw.metrics.RecordCampaignDelivery(req.ResidentialID, req.Category, len(campaigns))
	}
	return campaigns, err
}

// Track implements service.PromoService
func (mw *promoInstrumentingMiddleware) Track(ctx context.Context, req models.TrackRequest) error {
	return mw.next.Track(ctx, req)
}

// Metrics implements service.PromoService
func (mw *promoInstrumentingMiddleware) Metrics(ctx context.Context, campaignID string) (models.CampaignMetrics, error) {
	return mw.next.Metrics(ctx, campaignID)
}
