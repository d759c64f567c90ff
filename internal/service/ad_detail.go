package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/vecindario/adserver/internal/models"
)

// AdRepository is the data access interface for listings.
type AdRepository interface {
	GetAdByID(ctx context.Context, id string) (*models.Ad, error)
	GetAdsBySeller(ctx context.Context, phone string, excludeAdID string, limit int) ([]models.Ad, error)
	RecordView(ctx context.Context, adID string, requestID string) error
}

// UserRepository resolves advertiser display identities.
type UserRepository interface {
	LookupByPhone(ctx context.Context, phone string) (*models.AdvertiserInfo, error)
}

// SnapshotStore is the per-ad snapshot cache the resolver reads through.
type SnapshotStore interface {
	Get(ctx context.Context, adID string) (*models.Snapshot, bool)
	Put(ctx context.Context, adID string, snap *models.Snapshot) error
}

// AdDetailService resolves the full ad-detail view state.
type AdDetailService interface {
	// Cached returns the optimistic view from the snapshot cache without
	// touching the network. Secondary data comes from the snapshot as-is.
	Cached(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, bool)

	// Resolve runs the full pipeline: snapshot read, authoritative fetch,
	// variant decode, selection resolution, background secondary assembly
	// and snapshot persist.
	Resolve(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, error)

	// Others assembles the secondary data (advertiser, related listings,
	// cross-promotions) synchronously for the companion endpoint.
	Others(ctx context.Context, adID string) (*models.AdDetail, error)
}

const (
	relatedAdsLimit  = 8
	secondaryTimeout = 30 * time.Second
)

type adDetailService struct {
	ads       AdRepository
	users     UserRepository
	campaigns CampaignRepository
	snapshots SnapshotStore
	logger    log.Logger

	// Per-ad generation counters: a stale revalidation must never overwrite
	// the snapshot written by a newer one.
	gens map[string]uint64
	mu   sync.Mutex
}

// NewAdDetailService creates the resolver.
func NewAdDetailService(ads AdRepository, users UserRepository, campaigns CampaignRepository, snapshots SnapshotStore, logger log.Logger) AdDetailService {
	return &adDetailService{
		ads:       ads,
		users:     users,
		campaigns: campaigns,
		snapshots: snapshots,
		logger:    logger,
		gens:      make(map[string]uint64),
	}
}

// Cached implements the optimistic read path. It is fully synchronous and
// never performs network or database I/O, so the caller can render a stale
// snapshot before the authoritative fetch returns.
func (s *adDetailService) Cached(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, bool) {
	if err := req.Validate(); err != nil {
		return nil, false
	}

	snap, hit := s.snapshots.Get(ctx, req.AdID)
	if !hit || snap.Ad == nil {
		return nil, false
	}

	return &models.AdDetail{
		Ad:         snap.Ad,
		Variants:   snap.Variants,
		Selection:  models.ResolveSelection(snap.Variants, req.VariantSlug),
		Advertiser: snap.Advertiser,
		Related:    snap.Related,
		FromCache:  true,
	}, true
}

// Resolve implements AdDetailService.
func (s *adDetailService) Resolve(ctx context.Context, req models.AdDetailRequest) (*models.AdDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gen := s.nextGen(req.AdID)

	snap, hadSnapshot := s.snapshots.Get(ctx, req.AdID)

	ad, err := s.ads.GetAdByID(ctx, req.AdID)
	if err != nil {
		// With a snapshot on hand the failure is swallowed: the stale view
		// stays visible until the next revalidation.
		if hadSnapshot && snap.Ad != nil {
			level.Warn(s.logger).Log("msg", "ad revalidation failed, serving snapshot", "ad_id", req.AdID, "err", err)
			return &models.AdDetail{
				Ad:         snap.Ad,
				Variants:   snap.Variants,
				Selection:  models.ResolveSelection(snap.Variants, req.VariantSlug),
				Advertiser: snap.Advertiser,
				Related:    snap.Related,
				FromCache:  true,
			}, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	variants := s.decodeVariants(ad)
	detail := &models.AdDetail{
		Ad:        ad,
		Variants:  variants,
		Selection: models.ResolveSelection(variants, req.VariantSlug),
	}

	// Primary content is complete here. Advertiser identity, related
	// listings, the view log and the snapshot write all happen in the
	// background and must never block or fail the response.
	go s.assembleAndPersist(gen, ad, variants)

	return detail, nil
}

// Others implements AdDetailService.
func (s *adDetailService) Others(ctx context.Context, adID string) (*models.AdDetail, error) {
	ad, err := s.ads.GetAdByID(ctx, adID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	advertiser, related := s.fetchSecondary(ctx, ad)
	return &models.AdDetail{
		Ad:         ad,
		Advertiser: advertiser,
		Related:    related,
	}, nil
}

// decodeVariants decodes the ad's encoded variant list, logging and skipping
// malformed entries.
func (s *adDetailService) decodeVariants(ad *models.Ad) []models.Variant {
	if !ad.HasVariants() {
		return nil
	}

	variants, errs := models.DecodeVariants(ad.EncodedVariants)
	for _, err := range errs {
		level.Warn(s.logger).Log("msg", "skipping malformed variant", "ad_id", ad.ID, "err", err)
	}
	return variants
}

// fetchSecondary resolves the advertiser identity, the seller's other
// listings and matching cross-promotional campaigns. The two lookups run
// concurrently; every failure is logged and degraded to an absent value.
func (s *adDetailService) fetchSecondary(ctx context.Context, ad *models.Ad) (*models.AdvertiserInfo, []models.RelatedItem) {
	var (
		advertiser *models.AdvertiserInfo
		sellerAds  []models.Ad
		wg         sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		info, err := s.users.LookupByPhone(ctx, ad.AdvertiserPhone)
		if err != nil {
			level.Debug(s.logger).Log("msg", "advertiser lookup failed", "ad_id", ad.ID, "err", err)
			return
		}
		advertiser = info
	}()

	go func() {
		defer wg.Done()
		ads, err := s.ads.GetAdsBySeller(ctx, ad.AdvertiserPhone, ad.ID, relatedAdsLimit)
		if err != nil {
			level.Debug(s.logger).Log("msg", "related ads fetch failed", "ad_id", ad.ID, "err", err)
			return
		}
		sellerAds = ads
	}()

	wg.Wait()

	related := make([]models.RelatedItem, 0, len(sellerAds))
	for i := range sellerAds {
		related = append(related, models.RelatedItem{Kind: models.RelatedAd, Ad: &sellerAds[i]})
	}

	// Cross-promotional campaigns for the ad's category join the list.
	promos, err := s.campaigns.GetRunningCampaigns(ctx)
	if err != nil {
		level.Debug(s.logger).Log("msg", "cross promo fetch failed", "ad_id", ad.ID, "err", err)
	} else {
		now := time.Now()
		for i := range promos {
			c := &promos[i]
			if c.Type != models.CampaignCrossPromo || !c.IsRunning(now) || !c.MatchesCategory(ad.Category) {
				continue
			}
			resp := c.ToResponse()
			related = append(related, models.RelatedItem{Kind: models.RelatedCampaign, Campaign: &resp})
		}
	}

	rand.Shuffle(len(related), func(i, j int) {
		related[i], related[j] = related[j], related[i]
	})

	return advertiser, related
}

// assembleAndPersist runs the background half of the pipeline: secondary
// fetches, the fire-and-forget view log and the snapshot write. It runs on a
// detached context so a torn-down request cannot cancel it.
func (s *adDetailService) assembleAndPersist(gen uint64, ad *models.Ad, variants []models.Variant) {
	ctx, cancel := context.WithTimeout(context.Background(), secondaryTimeout)
	defer cancel()

	advertiser, related := s.fetchSecondary(ctx, ad)

	if err := s.ads.RecordView(ctx, ad.ID, ""); err != nil {
		level.Debug(s.logger).Log("msg", "view log failed", "ad_id", ad.ID, "err", err)
	}

	// Latest request wins: drop the snapshot if a newer resolution started
	// while this one was assembling.
	if !s.isCurrent(ad.ID, gen) {
		level.Debug(s.logger).Log("msg", "dropping stale snapshot", "ad_id", ad.ID, "gen", gen)
		return
	}

	snap := &models.Snapshot{
		Ad:         ad,
		Variants:   variants,
		Advertiser: advertiser,
		Related:    related,
		Timestamp:  time.Now(),
	}
	if err := s.snapshots.Put(ctx, ad.ID, snap); err != nil {
		level.Warn(s.logger).Log("msg", "snapshot persist failed", "ad_id", ad.ID, "err", err)
	}
}

func (s *adDetailService) nextGen(adID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[adID]++
	return s.gens[adID]
}

func (s *adDetailService) isCurrent(adID string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[adID] == gen
}
