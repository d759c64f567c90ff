package middleware

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/reqcontext"
	"github.com/vecindario/adserver/internal/service"
)

// adDetailLoggingMiddleware implements logging middleware for AdDetailService
type adDetailLoggingMiddleware struct {
	logger log.Logger
	next   service.AdDetailService
}

// NewAdDetailLoggingMiddleware creates a new logging middleware
func NewAdDetailLoggingMiddleware(logger log.Logger) func(service.AdDetailService) service.AdDetailService {
	return func(next service.AdDetailService) service.AdDetailService {
		return &adDetailLoggingMiddleware{
			logger: logger,
			next:   next,
		}
	}
}

// Cached implements service.AdDetailService
func (mw *adDetailLoggingMiddleware) Cached(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, bool) {
	return mw.next.Cached(ctx, req)
}

// Resolve implements service.AdDetailService with request logging
func (mw *adDetailLoggingMiddleware) Resolve(ctx context.Context, req models.AdDetailRequest) (detail *models.AdDetail, err error) {
	defer func(begin time.Time) {
		logFields := []interface{}{
			"method", "Resolve",
			"request_id", reqcontext.GetRequestID(ctx),
			"ad_id", req.AdID,
			"variant_slug", req.VariantSlug,
			"took", time.Since(begin),
		}
		if detail != nil {
			logFields = append(logFields,
				"variants", len(detail.Variants),
				"from_cache", detail.FromCache,
			)
		}
		if err != nil {
			logFields = append(logFields, "error", err.Error(), "success", false)
		} else {
			logFields = append(logFields, "success", true)
		}
		mw.logger.Log(logFields...)
	}(time.Now())

	return mw.next.Resolve(ctx, req)
}

// Others implements service.AdDetailService with request logging
func (mw *adDetailLoggingMiddleware) Others(ctx context.Context, adID string) (detail *models.AdDetail, err error) {
	defer func(begin time.Time) {
		logFields := []interface{}{
			"method", "Others",
			"request_id", reqcontext.GetRequestID(ctx),
			"ad_id", adID,
			"took", time.Since(begin),
		}
		if err != nil {
			logFields = append(logFields, "error", err.Error(), "success", false)
		} else {
			logFields = append(logFields, "related", len(detail.Related), "success", true)
		}
		mw.logger.Log(logFields...)
	}(time.Now())

	return mw.next.Others(ctx, adID)
}

// promoLoggingMiddleware implements logging middleware for PromoService
type promoLoggingMiddleware struct {
	logger log.Logger
	next   service.PromoService
}

// NewPromoLoggingMiddleware creates a new logging middleware
func NewPromoLoggingMiddleware(logger log.Logger) func(service.PromoService) service.PromoService {
	return func(next service.PromoService) service.PromoService {
		return &promoLoggingMiddleware{
			logger: logger,
			next:   next,
		}
	}
}

// PublicCampaigns implements service.PromoService with request logging
func (mw *promoLoggingMiddleware) PublicCampaigns(ctx context.Context, req models.PublicCampaignsRequest) (campaigns []models.CampaignResponse, err error) {
	defer func(begin time.Time) {
		logFields := []interface{}{
			"method", "PublicCampaigns",
			"request_id", reqcontext.GetRequestID(ctx),
			"residential", req.ResidentialID,
			"category", req.Category,
			"campaigns_count", len(campaigns),
			"took", time.Since(begin),
		}
		if err != nil {
			logFields = append(logFields, "error", err.Error(), "success", false)
		} else {
			logFields = append(logFields, "success", true)
		}
		mw.logger.Log(logFields...)
	}(time.Now())

	return mw.next.PublicCampaigns(ctx, req)
}

// Track implements service.PromoService
func (mw *promoLoggingMiddleware) Track(ctx context.Context, req models.TrackRequest) (err error) {
	defer func(begin time.Time) {
		mw.logger.Log(
			"method", "Track",
			"request_id", reqcontext.GetRequestID(ctx),
			"cid", req.CampaignID,
			"event", req.Event,
			"took", time.Since(begin),
			"error", err,
		)
	}(time.Now())

	return mw.next.Track(ctx, req)
}

// Metrics implements service.PromoService
func (mw *promoLoggingMiddleware) Metrics(ctx context.Context, campaignID string) (models.CampaignMetrics, error) {
	return mw.next.Metrics(ctx, campaignID)
}
