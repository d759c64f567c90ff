package service

import (
	"errors"
)

var (
	// ErrNotFound is the generic missing-record error repositories return.
	ErrNotFound = errors.New("record not found")

	// ErrAdNotFound surfaces an upstream 404 for the primary ad fetch. Its
	// message is deliberately distinct from the generic load failure so the
	// client can show a different empty state.
	ErrAdNotFound = errors.New("ad not found")

	// ErrLoadFailed covers any other primary fetch failure.
	ErrLoadFailed = errors.New("failed to load ad")

	// ErrCampaignNotFound surfaces a missing campaign.
	ErrCampaignNotFound = errors.New("campaign not found")
)
