package endpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// stubAdDetailService returns canned responses
type stubAdDetailService struct {
	detail *models.AdDetail
	err    error
}

func (s *stubAdDetailService) Cached(_ context.Context, _ models.AdDetailRequest) (*models.AdDetail, bool) {
	return s.detail, s.detail != nil
}

func (s *stubAdDetailService) Resolve(_ context.Context, _ models.AdDetailRequest) (*models.AdDetail, error) {
	return s.detail, s.err
}

func (s *stubAdDetailService) Others(_ context.Context, _ string) (*models.AdDetail, error) {
	return s.detail, s.err
}

// stubPromoService returns canned responses
type stubPromoService struct {
	campaigns []models.CampaignResponse
	metrics   models.CampaignMetrics
	err       error
}

func (s *stubPromoService) PublicCampaigns(_ context.Context, _ models.PublicCampaignsRequest) ([]models.CampaignResponse, error) {
	return s.campaigns, s.err
}

func (s *stubPromoService) Track(_ context.Context, _ models.TrackRequest) error {
	return s.err
}

func (s *stubPromoService) Metrics(_ context.Context, _ string) (models.CampaignMetrics, error) {
	return s.metrics, s.err
}

func TestGetAdDetailEndpoint(t *testing.T) {
	detail := &models.AdDetail{Ad: &models.Ad{ID: "tamales-01"}}
	endpoints := MakeEndpoints(Services{AdDetail: &stubAdDetailService{detail: detail}})

	response, err := endpoints.GetAdDetailEndpoint(context.Background(), GetAdDetailRequest{
		AdDetailRequest: models.AdDetailRequest{AdID: "tamales-01"},
	})
	require.NoError(t, err)

	resp := response.(GetAdDetailResponse)
	assert.NoError(t, resp.Failed())
	assert.Equal(t, "tamales-01", resp.Detail.Ad.ID)
}

func TestGetAdDetailEndpoint_ErrorTravelsInResponse(t *testing.T) {
	endpoints := MakeEndpoints(Services{AdDetail: &stubAdDetailService{err: service.ErrAdNotFound}})

	response, err := endpoints.GetAdDetailEndpoint(context.Background(), GetAdDetailRequest{
		AdDetailRequest: models.AdDetailRequest{AdID: "gone"},
	})

	// Business errors ride inside the response, never the transport error.
	require.NoError(t, err)

	resp := response.(GetAdDetailResponse)
	assert.ErrorIs(t, resp.Failed(), service.ErrAdNotFound)
}

func TestPublicCampaignsEndpoint(t *testing.T) {
	endpoints := MakeEndpoints(Services{Promo: &stubPromoService{
		campaigns: []models.CampaignResponse{{CID: "promo-super", Type: models.CampaignCrossPromo}},
	}})

	response, err := endpoints.PublicCampaignsEndpoint(context.Background(), PublicCampaignsRequest{
		Request: models.PublicCampaignsRequest{ResidentialID: "res-pinos"},
	})
	require.NoError(t, err)

	resp := response.(PublicCampaignsResponse)
	require.Len(t, resp.Campaigns, 1)
	assert.Equal(t, "promo-super", resp.Campaigns[0].CID)
}

func TestTrackCampaignEndpoint(t *testing.T) {
	endpoints := MakeEndpoints(Services{Promo: &stubPromoService{err: service.ErrCampaignNotFound}})

	response, err := endpoints.TrackCampaignEndpoint(context.Background(), TrackCampaignRequest{
		Request: models.TrackRequest{CampaignID: "gone", Event: models.EventClick},
	})
	require.NoError(t, err)

	resp := response.(TrackCampaignResponse)
	assert.ErrorIs(t, resp.Failed(), service.ErrCampaignNotFound)
}
