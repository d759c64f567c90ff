package repository

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// mockRepository implements the service data access interfaces in memory,
// seeded with sample data. Used when the service runs without a database.
type mockRepository struct {
	ads          map[string]models.Ad
	campaigns    map[string]models.Campaign
	users        map[string]models.AdvertiserInfo
	residentials map[string]models.Residential
	views        int64
	mu           sync.Mutex
}

// NewMockRepository creates a new mock repository with sample data
func NewMockRepository() *mockRepository {
	now := time.Now()

	encode := func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	}

	ads := map[string]models.Ad{
		"tamales-01": {
			ID:          "tamales-01",
			Title:       "Tamales caseros",
			Description: "Tamales de rajas y verdes, entrega en porton",
			Price:       30,
			Currency:    "MXN",
			Images:      []string{"https://cdn.example.com/tamales.jpg"},
			Active:      true,
			ModifiedAt:  now,
			EncodedVariants: []string{
				encode(`{"type":"Chico","total_price":50,"minQuantity":2}`),
				encode(`{"type":"Grande","unit_price":40,"minQuantity":1}`),
			},
			AdvertiserPhone: "5215511112222",
			Category:        "comida",
			ResidentialID:   "res-pinos",
		},
		"bici-02": {
			ID:              "bici-02",
			Title:           "Bicicleta rodada 26",
			Description:     "Poco uso, frenos nuevos",
			Price:           1800,
			Currency:        "MXN",
			Images:          []string{"https://cdn.example.com/bici.jpg"},
			Active:          true,
			ModifiedAt:      now,
			AdvertiserPhone: "5215511112222",
			Category:        "deportes",
			ResidentialID:   "res-pinos",
		},
	}

	campaigns := map[string]models.Campaign{
		"promo-super": {
			ID:            "promo-super",
			Name:          "Super del Valle - despensa a domicilio",
			ImageURL:      "https://cdn.example.com/super.jpg",
			LinkURL:       "https://superdelvalle.example.com",
			Type:          models.CampaignCrossPromo,
			Status:        models.StatusActive,
			BudgetCredits: 1000,
			StartDate:     now.AddDate(0, -1, 0),
			EndDate:       now.AddDate(0, 1, 0),
			Categories:    []string{"comida"},
			Residentials:  []string{"res-pinos"},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		"banner-gym": {
			ID:            "banner-gym",
			Name:          "Gimnasio Vecino",
			ImageURL:      "https://cdn.example.com/gym.jpg",
			LinkURL:       "https://gimnasiovecino.example.com",
			Type:          models.CampaignBanner,
			Status:        models.StatusActive,
			BudgetCredits: 500,
			StartDate:     now.AddDate(0, -1, 0),
			EndDate:       now.AddDate(0, 2, 0),
			Residentials:  []string{"res-pinos", "res-encinos"},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	users := map[string]models.AdvertiserInfo{
		"5215511112222": {Phone: "5215511112222", DisplayName: "Lupita M."},
	}

	residentials := map[string]models.Residential{
		"res-pinos": {ID: "res-pinos", Name: "Los Pinos", Latitude: 19.4326, Longitude: -99.1332, RadiusMeters: 800},
	}

	return &mockRepository{
		ads:          ads,
		campaigns:    campaigns,
		users:        users,
		residentials: residentials,
	}
}

// GetAdByID implements service.AdRepository
func (r *mockRepository) GetAdByID(_ context.Context, id string) (*models.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ad, exists := r.ads[id]
	if !exists {
		return nil, service.ErrNotFound
	}
	return &ad, nil
}

// GetAdsBySeller implements service.AdRepository
func (r *mockRepository) GetAdsBySeller(_ context.Context, phone string, excludeAdID string, limit int) ([]models.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ads []models.Ad
	for _, ad := range r.ads {
		if ad.AdvertiserPhone != phone || ad.ID == excludeAdID || !ad.Active {
			continue
		}
		ads = append(ads, ad)
		if len(ads) >= limit {
			break
		}
	}
	return ads, nil
}

// RecordView implements service.AdRepository
func (r *mockRepository) RecordView(_ context.Context, adID string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ads[adID]; !exists {
		return service.ErrNotFound
	}
	r.views++
	return nil
}

// GetRunningCampaigns implements service.CampaignRepository
func (r *mockRepository) GetRunningCampaigns(_ context.Context) ([]models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var running []models.Campaign
	for _, c := range r.campaigns {
		if c.IsRunning(now) {
			running = append(running, c)
		}
	}
	return running, nil
}

// GetCampaignByID implements service.CampaignRepository
func (r *mockRepository) GetCampaignByID(_ context.Context, id string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.campaigns[id]
	if !exists {
		return nil, service.ErrNotFound
	}
	return &c, nil
}

// CreateCampaign implements service.CampaignRepository
func (r *mockRepository) CreateCampaign(_ context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.campaigns[c.ID] = *c
	return nil
}

// UpdateCampaign implements service.CampaignRepository
func (r *mockRepository) UpdateCampaign(_ context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.campaigns[c.ID]; !exists {
		return service.ErrNotFound
	}
	r.campaigns[c.ID] = *c
	return nil
}

// DeleteCampaign implements service.CampaignRepository
func (r *mockRepository) DeleteCampaign(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.campaigns[id]; !exists {
		return service.ErrNotFound
	}
	delete(r.campaigns, id)
	return nil
}

// IncrementCounter implements service.CampaignRepository
func (r *mockRepository) IncrementCounter(_ context.Context, id string, event models.TrackEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.campaigns[id]
	if !exists {
		return service.ErrNotFound
	}
	switch event {
	case models.EventClick:
		c.Clicks++
	default:
		c.Impressions++
	}
	c.SpentCredits++
	r.campaigns[id] = c
	return nil
}

// LookupByPhone implements service.UserRepository
func (r *mockRepository) LookupByPhone(_ context.Context, phone string) (*models.AdvertiserInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.users[phone]
	if !exists {
		return nil, service.ErrNotFound
	}
	return &info, nil
}

// GetResidentialByID implements service.ResidentialRepository
func (r *mockRepository) GetResidentialByID(_ context.Context, id string) (*models.Residential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, exists := r.residentials[id]
	if !exists {
		return nil, service.ErrNotFound
	}
	return &res, nil
}
