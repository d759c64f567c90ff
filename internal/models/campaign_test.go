package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func runningCampaign() Campaign {
	now := time.Now()
	return Campaign{
		ID:            "camp-1",
		Name:          "Test Campaign",
		Type:          CampaignBanner,
		Status:        StatusActive,
		BudgetCredits: 100,
		SpentCredits:  10,
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		Residentials:  []string{"res-pinos"},
	}
}

func TestCampaign_IsRunning(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*Campaign)
		want   bool
	}{
		{
			name:   "active in range with budget",
			mutate: func(c *Campaign) {},
			want:   true,
		},
		{
			name:   "inactive status",
			mutate: func(c *Campaign) { c.Status = StatusInactive },
			want:   false,
		},
		{
			name:   "not started yet",
			mutate: func(c *Campaign) { c.StartDate = now.Add(time.Hour) },
			want:   false,
		},
		{
			name:   "already ended",
			mutate: func(c *Campaign) { c.EndDate = now.Add(-time.Hour) },
			want:   false,
		},
		{
			name:   "budget exhausted",
			mutate: func(c *Campaign) { c.SpentCredits = c.BudgetCredits },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := runningCampaign()
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.IsRunning(now))
		})
	}
}

func TestCampaign_MatchesCategory(t *testing.T) {
	c := runningCampaign()

	// Empty category list targets every category.
	assert.True(t, c.MatchesCategory("comida"))
	assert.True(t, c.MatchesCategory(""))

	c.Categories = []string{"Comida", "servicios"}
	assert.True(t, c.MatchesCategory("comida"))
	assert.True(t, c.MatchesCategory("  SERVICIOS  "))
	assert.False(t, c.MatchesCategory("muebles"))
}

func TestCampaign_MatchesResidential(t *testing.T) {
	c := runningCampaign()

	assert.True(t, c.MatchesResidential("res-pinos"))
	assert.False(t, c.MatchesResidential("res-otro"))

	// No residential targeting means no audience at all.
	c.Residentials = nil
	assert.False(t, c.MatchesResidential("res-pinos"))
}

func TestCampaign_Metrics(t *testing.T) {
	c := runningCampaign()
	c.Impressions = 200
	c.Clicks = 10
	c.SpentCredits = 30

	m := c.Metrics()

	assert.Equal(t, "camp-1", m.CampaignID)
	assert.Equal(t, int64(200), m.Impressions)
	assert.Equal(t, int64(10), m.Clicks)
	assert.Equal(t, 0.05, m.CTR)
	assert.Equal(t, int64(30), m.SpentCredits)
	assert.Equal(t, int64(70), m.RemainingCredits)
}

func TestCampaign_MetricsNoImpressions(t *testing.T) {
	c := runningCampaign()

	m := c.Metrics()
	assert.Zero(t, m.CTR)
}

func TestCampaign_ToResponse(t *testing.T) {
	c := runningCampaign()
	c.ImageURL = "https://cdn.example.com/banner.png"
	c.LinkURL = "https://example.com/promo"

	resp := c.ToResponse()

	assert.Equal(t, c.ID, resp.CID)
	assert.Equal(t, c.ImageURL, resp.Img)
	assert.Equal(t, c.LinkURL, resp.Link)
	assert.Equal(t, CampaignBanner, resp.Type)
}

func TestCampaignType_IsValid(t *testing.T) {
	assert.True(t, CampaignBanner.IsValid())
	assert.True(t, CampaignEmbedded.IsValid())
	assert.True(t, CampaignCrossPromo.IsValid())
	assert.False(t, CampaignType("popup").IsValid())
}
