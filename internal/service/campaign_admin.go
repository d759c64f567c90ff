package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/vecindario/adserver/internal/models"
)

// ObjectStorage is the binary object storage behind campaign and listing
// images.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// CampaignService is the admin-console surface for paid campaigns.
type CampaignService interface {
	Create(ctx context.Context, c *models.Campaign) (*models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
	// Delete removes a campaign and best-effort cleans up its stored image.
	// Storage cleanup is not transactional with the row delete.
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Campaign, error)
}

type campaignService struct {
	campaigns CampaignRepository
	storage   ObjectStorage
	logger    log.Logger
}

// NewCampaignService creates the admin campaign service.
func NewCampaignService(campaigns CampaignRepository, storage ObjectStorage, logger log.Logger) CampaignService {
	return &campaignService{
		campaigns: campaigns,
		storage:   storage,
		logger:    logger,
	}
}

// Create validates and persists a new campaign.
func (s *campaignService) Create(ctx context.Context, c *models.Campaign) (*models.Campaign, error) {
	if err := validateCampaign(c); err != nil {
		return nil, err
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.campaigns.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return c, nil
}

// Update validates and persists campaign changes.
func (s *campaignService) Update(ctx context.Context, c *models.Campaign) error {
	if err := validateCampaign(c); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("missing campaign id")
	}

	c.UpdatedAt = time.Now()
	if err := s.campaigns.UpdateCampaign(ctx, c); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

// Delete removes the campaign row and then its stored image. A failed image
// delete is logged and ignored so the destructive path always completes.
func (s *campaignService) Delete(ctx context.Context, id string) error {
	c, err := s.campaigns.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("failed to load campaign: %w", err)
	}

	if err := s.campaigns.DeleteCampaign(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	if key := storageKeyFromURL(c.ImageURL); key != "" {
		if err := s.storage.Delete(ctx, key); err != nil {
			level.Warn(s.logger).Log("msg", "campaign image cleanup failed", "cid", id, "key", key, "err", err)
		}
	}
	return nil
}

// Get returns one campaign for the admin console.
func (s *campaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := s.campaigns.GetCampaignByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	return c, nil
}

func validateCampaign(c *models.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("missing campaign name")
	}
	if !c.Type.IsValid() {
		return errors.New("invalid campaign type")
	}
	if c.BudgetCredits <= 0 {
		return errors.New("invalid budget")
	}
	if c.EndDate.Before(c.StartDate) {
		return errors.New("invalid date range")
	}
	return nil
}

// storageKeyFromURL extracts the object key from a public storage URL.
// Uploaded campaign images always live under the campaigns/ prefix.
func storageKeyFromURL(url string) string {
	if idx := strings.Index(url, "campaigns/"); idx >= 0 {
		return url[idx:]
	}
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return ""
	}
	return url[idx+1:]
}
