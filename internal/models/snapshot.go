package models

import (
	"time"
)

// RelatedKind tags an entry in the merged related-items list.
type RelatedKind string

const (
	RelatedAd       RelatedKind = "ad"
	RelatedCampaign RelatedKind = "campaign"
)

// RelatedItem is either another listing from the same seller or a
// cross-promotional paid campaign. The two lists are merged and shuffled
// before display.
type RelatedItem struct {
	Kind     RelatedKind       `json:"kind"`
	Ad       *Ad               `json:"ad,omitempty"`
	Campaign *CampaignResponse `json:"campaign,omitempty"`
}

// Snapshot is the cached bundle of an ad plus its resolved secondary data,
// stored under a per-ad key. Snapshots are best-effort: they are only ever
// overwritten, never expired or evicted.
type Snapshot struct {
	Ad         *Ad             `json:"ad"`
	Variants   []Variant       `json:"variants,omitempty"`
	Advertiser *AdvertiserInfo `json:"advertiser,omitempty"`
	Related    []RelatedItem   `json:"related,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// AdDetail is the merged view state for one ad page: the authoritative ad,
// its decoded variants, the resolved selection and whatever secondary data
// is already available.
type AdDetail struct {
	Ad         *Ad             `json:"ad"`
	Variants   []Variant       `json:"variants,omitempty"`
	Selection  Selection       `json:"selection"`
	Advertiser *AdvertiserInfo `json:"advertiser,omitempty"`
	Related    []RelatedItem   `json:"related,omitempty"`
	// FromCache marks a detail served from a snapshot rather than the
	// authoritative record.
	FromCache bool `json:"from_cache,omitempty"`
}
