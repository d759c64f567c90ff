package service

import (
	"context"
	"errors"
	"time"

	"github.com/vecindario/adserver/internal/models"
)

// CampaignRepository is the data access interface for paid campaigns.
type CampaignRepository interface {
	GetRunningCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error)
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	UpdateCampaign(ctx context.Context, c *models.Campaign) error
	DeleteCampaign(ctx context.Context, id string) error
	IncrementCounter(ctx context.Context, id string, event models.TrackEvent) error
}

// PromoService serves paid campaigns to public audiences.
type PromoService interface {
	PublicCampaigns(ctx context.Context, req models.PublicCampaignsRequest) ([]models.CampaignResponse, error)
	Track(ctx context.Context, req models.TrackRequest) error
	Metrics(ctx context.Context, campaignID string) (models.CampaignMetrics, error)
}

type promoService struct {
	campaigns CampaignRepository
}

// NewPromoService creates a new public campaign delivery service.
func NewPromoService(campaigns CampaignRepository) PromoService {
	return &promoService{campaigns: campaigns}
}

// PublicCampaigns finds all campaigns servable to the request's audience.
func (s *promoService) PublicCampaigns(ctx context.Context, req models.PublicCampaignsRequest) ([]models.CampaignResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	campaigns, err := s.campaigns.GetRunningCampaigns(ctx)
	if err != nil {
		return nil, errors.New("failed to retrieve campaigns")
	}

	now := time.Now()
	var matching []models.CampaignResponse
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsRunning(now) {
			continue
		}
		if !c.MatchesResidential(req.ResidentialID) {
			continue
		}
		if req.Category != "" && !c.MatchesCategory(req.Category) {
			continue
		}
		if req.Type != "" && c.Type != req.Type {
			continue
		}
		matching = append(matching, c.ToResponse())
	}

	return matching, nil
}

// Track records one campaign interaction. Impressions and clicks both spend
// one budget credit; IsRunning stops delivery once the budget is exhausted.
func (s *promoService) Track(ctx context.Context, req models.TrackRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.campaigns.IncrementCounter(ctx, req.CampaignID, req.Event); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCampaignNotFound
		}
		return errors.New("failed to track campaign event")
	}
	return nil
}

// Metrics returns the performance summary for one campaign.
func (s *promoService) Metrics(ctx context.Context, campaignID string) (models.CampaignMetrics, error) {
	c, err := s.campaigns.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.CampaignMetrics{}, ErrCampaignNotFound
		}
		return models.CampaignMetrics{}, errors.New("failed to retrieve campaign")
	}
	return c.Metrics(), nil
}
