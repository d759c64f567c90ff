package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vecindario/adserver/internal/models"
)

func servableCampaigns(now time.Time) []models.Campaign {
	return []models.Campaign{
		{
			ID: "banner-gym", Type: models.CampaignBanner, Status: models.StatusActive,
			BudgetCredits: 100, SpentCredits: 10,
			StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Residentials: []string{"res-pinos"},
		},
		{
			ID: "promo-super", Type: models.CampaignCrossPromo, Status: models.StatusActive,
			BudgetCredits: 100, SpentCredits: 0,
			StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Categories: []string{"comida"}, Residentials: []string{"res-pinos"},
		},
		{
			ID: "banner-otro", Type: models.CampaignBanner, Status: models.StatusActive,
			BudgetCredits: 100,
			StartDate:     now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Residentials: []string{"res-lagos"},
		},
		{
			ID: "banner-broke", Type: models.CampaignBanner, Status: models.StatusActive,
			BudgetCredits: 50, SpentCredits: 50,
			StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Residentials: []string{"res-pinos"},
		},
		{
			ID: "banner-everywhere", Type: models.CampaignBanner, Status: models.StatusActive,
			BudgetCredits: 100,
			StartDate:     now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			// No residential targeting: no audience, never served.
		},
	}
}

func TestPromoService_PublicCampaigns(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetRunningCampaigns", mock.Anything).Return(servableCampaigns(time.Now()), nil)

	svc := NewPromoService(repo)

	campaigns, err := svc.PublicCampaigns(context.Background(), models.PublicCampaignsRequest{
		ResidentialID: "res-pinos",
	})
	require.NoError(t, err)

	require.Len(t, campaigns, 2)
	ids := []string{campaigns[0].CID, campaigns[1].CID}
	assert.Contains(t, ids, "banner-gym")
	assert.Contains(t, ids, "promo-super")
}

func TestPromoService_PublicCampaigns_CategoryFilter(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetRunningCampaigns", mock.Anything).Return(servableCampaigns(time.Now()), nil)

	svc := NewPromoService(repo)

	campaigns, err := svc.PublicCampaigns(context.Background(), models.PublicCampaignsRequest{
		ResidentialID: "res-pinos",
		Category:      "muebles",
	})
	require.NoError(t, err)

	// banner-gym has no category targeting and matches everything;
	// promo-super targets comida only.
	require.Len(t, campaigns, 1)
	assert.Equal(t, "banner-gym", campaigns[0].CID)
}

func TestPromoService_PublicCampaigns_TypeFilter(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetRunningCampaigns", mock.Anything).Return(servableCampaigns(time.Now()), nil)

	svc := NewPromoService(repo)

	campaigns, err := svc.PublicCampaigns(context.Background(), models.PublicCampaignsRequest{
		ResidentialID: "res-pinos",
		Type:          models.CampaignCrossPromo,
	})
	require.NoError(t, err)

	require.Len(t, campaigns, 1)
	assert.Equal(t, "promo-super", campaigns[0].CID)
}

func TestPromoService_PublicCampaigns_Validation(t *testing.T) {
	svc := NewPromoService(&MockCampaignRepository{})

	tests := []struct {
		name    string
		request models.PublicCampaignsRequest
		wantErr string
	}{
		{
			name:    "missing residential",
			request: models.PublicCampaignsRequest{Category: "comida"},
			wantErr: "missing residential param",
		},
		{
			name:    "unknown campaign type",
			request: models.PublicCampaignsRequest{ResidentialID: "res-pinos", Type: "popup"},
			wantErr: "invalid campaign type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PublicCampaigns(context.Background(), tt.request)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPromoService_PublicCampaigns_RepositoryError(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetRunningCampaigns", mock.Anything).Return(nil, errors.New("db down"))

	svc := NewPromoService(repo)

	_, err := svc.PublicCampaigns(context.Background(), models.PublicCampaignsRequest{ResidentialID: "res-pinos"})
	assert.EqualError(t, err, "failed to retrieve campaigns")
}

func TestPromoService_Track(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("IncrementCounter", mock.Anything, "promo-super", models.EventClick).Return(nil)

	svc := NewPromoService(repo)

	err := svc.Track(context.Background(), models.TrackRequest{CampaignID: "promo-super", Event: models.EventClick})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPromoService_Track_Validation(t *testing.T) {
	svc := NewPromoService(&MockCampaignRepository{})

	err := svc.Track(context.Background(), models.TrackRequest{Event: models.EventClick})
	assert.EqualError(t, err, "missing campaign id")

	err = svc.Track(context.Background(), models.TrackRequest{CampaignID: "promo-super", Event: "hover"})
	assert.EqualError(t, err, "invalid track event")
}

func TestPromoService_Track_UnknownCampaign(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("IncrementCounter", mock.Anything, "gone", models.EventImpression).Return(ErrNotFound)

	svc := NewPromoService(repo)

	err := svc.Track(context.Background(), models.TrackRequest{CampaignID: "gone", Event: models.EventImpression})
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestPromoService_Metrics(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetCampaignByID", mock.Anything, "promo-super").Return(&models.Campaign{
		ID:            "promo-super",
		BudgetCredits: 100,
		SpentCredits:  40,
		Impressions:   400,
		Clicks:        20,
	}, nil)

	svc := NewPromoService(repo)

	m, err := svc.Metrics(context.Background(), "promo-super")
	require.NoError(t, err)

	assert.Equal(t, int64(400), m.Impressions)
	assert.Equal(t, int64(20), m.Clicks)
	assert.Equal(t, 0.05, m.CTR)
	assert.Equal(t, int64(60), m.RemainingCredits)
}

func TestPromoService_Metrics_NotFound(t *testing.T) {
	repo := &MockCampaignRepository{}
	repo.On("GetCampaignByID", mock.Anything, "gone").Return(nil, ErrNotFound)

	svc := NewPromoService(repo)

	_, err := svc.Metrics(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}
