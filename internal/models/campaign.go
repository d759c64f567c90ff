package models

import (
	"slices"
	"strings"
	"time"
)

// Campaign is a paid advertising campaign bought by an advertiser: a budget
// in credits, a date range, audience targeting and a placement type.
type Campaign struct {
	ID            string         `json:"cid" db:"id"`
	Name          string         `json:"name" db:"name"`
	ImageURL      string         `json:"img" db:"image_url"`
	LinkURL       string         `json:"link" db:"link_url"`
	Type          CampaignType   `json:"type" db:"type"`
	Status        CampaignStatus `json:"status" db:"status"`
	BudgetCredits int64          `json:"budget_credits" db:"budget_credits"`
	SpentCredits  int64          `json:"spent_credits" db:"spent_credits"`
	StartDate     time.Time      `json:"start_date" db:"start_date"`
	EndDate       time.Time      `json:"end_date" db:"end_date"`
	// Categories the campaign targets; empty means all categories.
	Categories []string `json:"categories" db:"categories"`
	// Residentials the campaign is shown in; empty means no audience.
	Residentials []string  `json:"residentials" db:"residentials"`
	Impressions  int64     `json:"impressions" db:"impressions"`
	Clicks       int64     `json:"clicks" db:"clicks"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CampaignType is the placement type of a campaign.
type CampaignType string

const (
	CampaignBanner     CampaignType = "banner"
	CampaignEmbedded   CampaignType = "embedded"
	CampaignCrossPromo CampaignType = "cross_promo"
)

// IsValid reports whether the placement type is known.
func (ct CampaignType) IsValid() bool {
	return ct == CampaignBanner || ct == CampaignEmbedded || ct == CampaignCrossPromo
}

// CampaignStatus represents the status of a campaign.
type CampaignStatus string

const (
	StatusActive   CampaignStatus = "ACTIVE"
	StatusInactive CampaignStatus = "INACTIVE"
)

// IsActive returns true if the campaign is active.
func (c *Campaign) IsActive() bool {
	return c.Status == StatusActive
}

// IsRunning reports whether the campaign should be served right now: active,
// inside its date range, with budget remaining.
func (c *Campaign) IsRunning(now time.Time) bool {
	if !c.IsActive() {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	return c.SpentCredits < c.BudgetCredits
}

// MatchesCategory reports whether the campaign targets the given category.
// An empty category list targets all categories.
func (c *Campaign) MatchesCategory(category string) bool {
	if len(c.Categories) == 0 {
		return true
	}
	return slices.Contains(normalizeAll(c.Categories), normalizeValue(category))
}

// MatchesResidential reports whether the campaign is shown in the given
// residential. An empty residential list means the campaign has no audience.
func (c *Campaign) MatchesResidential(residentialID string) bool {
	if len(c.Residentials) == 0 {
		return false
	}
	return slices.Contains(c.Residentials, strings.TrimSpace(residentialID))
}

// CampaignResponse is the public API shape of a campaign.
type CampaignResponse struct {
	CID  string       `json:"cid"`
	Img  string       `json:"img"`
	Link string       `json:"link"`
	Type CampaignType `json:"type"`
}

// ToResponse converts a Campaign to its public response form.
func (c *Campaign) ToResponse() CampaignResponse {
	return CampaignResponse{
		CID:  c.ID,
		Img:  c.ImageURL,
		Link: c.LinkURL,
		Type: c.Type,
	}
}

// CampaignMetrics is the per-campaign performance summary served to the
// advertiser console.
type CampaignMetrics struct {
	CampaignID       string  `json:"cid"`
	Impressions      int64   `json:"impressions"`
	Clicks           int64   `json:"clicks"`
	CTR              float64 `json:"ctr"`
	SpentCredits     int64   `json:"spent_credits"`
	RemainingCredits int64   `json:"remaining_credits"`
}

// Metrics derives the performance summary from the campaign counters.
func (c *Campaign) Metrics() CampaignMetrics {
	m := CampaignMetrics{
		CampaignID:       c.ID,
		Impressions:      c.Impressions,
		Clicks:           c.Clicks,
		SpentCredits:     c.SpentCredits,
		RemainingCredits: c.BudgetCredits - c.SpentCredits,
	}
	if c.Impressions > 0 {
		m.CTR = float64(c.Clicks) / float64(c.Impressions)
	}
	return m
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func normalizeAll(values []string) []string {
	normalized := make([]string, len(values))
	for i, v := range values {
		normalized[i] = normalizeValue(v)
	}
	return normalized
}
