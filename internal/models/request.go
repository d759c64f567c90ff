package models

import (
	"errors"
	"strings"
)

// AdDetailRequest identifies the ad (and optionally the variant) being viewed.
type AdDetailRequest struct {
	AdID        string `json:"ad_id"`
	VariantSlug string `json:"variant_slug,omitempty"`
}

// Validate checks the request has an ad identifier.
func (r *AdDetailRequest) Validate() error {
	if strings.TrimSpace(r.AdID) == "" {
		return errors.New("missing ad id")
	}
	return nil
}

// PublicCampaignsRequest asks for campaigns servable to one audience.
type PublicCampaignsRequest struct {
	ResidentialID string       `json:"residential_id"`
	Category      string       `json:"category,omitempty"`
	Type          CampaignType `json:"type,omitempty"`
}

// Validate checks required parameters. Residential is required because a
// campaign with no residential targeting has no audience at all.
func (r *PublicCampaignsRequest) Validate() error {
	if strings.TrimSpace(r.ResidentialID) == "" {
		return errors.New("missing residential param")
	}
	if r.Type != "" && !r.Type.IsValid() {
		return errors.New("invalid campaign type")
	}
	return nil
}

// Normalize trims and lowercases values for consistent comparison.
func (r *PublicCampaignsRequest) Normalize() {
	r.ResidentialID = strings.TrimSpace(r.ResidentialID)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

// TrackEvent is a campaign interaction kind.
type TrackEvent string

const (
	EventImpression TrackEvent = "impression"
	EventClick      TrackEvent = "click"
)

// TrackRequest records one campaign interaction.
type TrackRequest struct {
	CampaignID string     `json:"cid"`
	Event      TrackEvent `json:"event"`
}

// Validate checks the tracking payload.
func (r *TrackRequest) Validate() error {
	if strings.TrimSpace(r.CampaignID) == "" {
		return errors.New("missing campaign id")
	}
	if r.Event != EventImpression && r.Event != EventClick {
		return errors.New("invalid track event")
	}
	return nil
}

// VerifyPhoneRequest starts phone-based access verification: the caller's
// position must fall inside the residential before a code is sent.
type VerifyPhoneRequest struct {
	Phone         string  `json:"celular"`
	ResidentialID string  `json:"residencial_id"`
	Latitude      float64 `json:"lat"`
	Longitude     float64 `json:"lng"`
}

// Validate checks required verification parameters.
func (r *VerifyPhoneRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return errors.New("missing phone param")
	}
	if strings.TrimSpace(r.ResidentialID) == "" {
		return errors.New("missing residential param")
	}
	return nil
}

// ConfirmCodeRequest completes verification with the code the user received.
type ConfirmCodeRequest struct {
	Phone string `json:"celular"`
	Code  string `json:"code"`
}

// Validate checks required confirmation parameters.
func (r *ConfirmCodeRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return errors.New("missing phone param")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("missing code param")
	}
	return nil
}
