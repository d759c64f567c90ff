package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vecindario/adserver/internal/models"
)

// MockAdRepository is a mock implementation of AdRepository
type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) GetAdByID(ctx context.Context, id string) (*models.Ad, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ad), args.Error(1)
}

func (m *MockAdRepository) GetAdsBySeller(ctx context.Context, phone string, excludeAdID string, limit int) ([]models.Ad, error) {
	args := m.Called(ctx, phone, excludeAdID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ad), args.Error(1)
}

func (m *MockAdRepository) RecordView(ctx context.Context, adID string, requestID string) error {
	args := m.Called(ctx, adID, requestID)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) LookupByPhone(ctx context.Context, phone string) (*models.AdvertiserInfo, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdvertiserInfo), args.Error(1)
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetRunningCampaigns(ctx context.Context) ([]models.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) DeleteCampaign(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCampaignRepository) IncrementCounter(ctx context.Context, id string, event models.TrackEvent) error {
	args := m.Called(ctx, id, event)
	return args.Error(0)
}

// fakeSnapshotStore is a thread-safe in-memory SnapshotStore
type fakeSnapshotStore struct {
	mu    sync.Mutex
	snaps map[string]*models.Snapshot
	puts  int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snaps: make(map[string]*models.Snapshot)}
}

func (f *fakeSnapshotStore) Get(_ context.Context, adID string) (*models.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snaps[adID]
	return snap, ok
}

func (f *fakeSnapshotStore) Put(_ context.Context, adID string, snap *models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[adID] = snap
	f.puts++
	return nil
}

func encodeVariant(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func testAd() *models.Ad {
	return &models.Ad{
		ID:              "tamales-01",
		Title:           "Tamales caseros",
		Active:          true,
		ModifiedAt:      time.Now(),
		AdvertiserPhone: "5215511112222",
		Category:        "comida",
		ResidentialID:   "res-pinos",
		EncodedVariants: []string{
			encodeVariant(`{"type":"Chico","total_price":50,"minQuantity":2}`),
			encodeVariant(`{"type":"Grande","unit_price":40,"minQuantity":1}`),
		},
	}
}

// allowBackground registers the expectations the background snapshot
// assembly may hit after Resolve returns.
func allowBackground(ads *MockAdRepository, users *MockUserRepository, campaigns *MockCampaignRepository) {
	users.On("LookupByPhone", mock.Anything, mock.Anything).Return(nil, ErrNotFound).Maybe()
	ads.On("GetAdsBySeller", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]models.Ad{}, nil).Maybe()
	ads.On("RecordView", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	campaigns.On("GetRunningCampaigns", mock.Anything).Return([]models.Campaign{}, nil).Maybe()
}

func TestAdDetailService_Resolve(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(testAd(), nil)
	allowBackground(ads, users, campaigns)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01"})
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, "Tamales caseros", detail.Ad.Title)
	assert.False(t, detail.FromCache)

	require.Len(t, detail.Variants, 2)
	assert.Equal(t, 25.0, detail.Variants[0].Price)
	assert.Equal(t, 40.0, detail.Variants[1].Price)

	// No route slug: first variant selected with a canonical redirect.
	require.NotNil(t, detail.Selection.Variant)
	assert.Equal(t, "Chico", detail.Selection.Variant.Type)
	assert.Equal(t, 2, detail.Selection.Quantity)
	assert.Equal(t, "chico", detail.Selection.RedirectSlug)
}

func TestAdDetailService_Resolve_VariantSlug(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(testAd(), nil)
	allowBackground(ads, users, campaigns)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01", VariantSlug: "grande"})
	require.NoError(t, err)

	require.NotNil(t, detail.Selection.Variant)
	assert.Equal(t, "Grande", detail.Selection.Variant.Type)
	assert.Empty(t, detail.Selection.RedirectSlug)
}

func TestAdDetailService_Resolve_UnmatchedSlug(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(testAd(), nil)
	allowBackground(ads, users, campaigns)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01", VariantSlug: "mediano"})
	require.NoError(t, err)

	// Base ad is shown: no selection, no redirect, no error.
	assert.Nil(t, detail.Selection.Variant)
	assert.Empty(t, detail.Selection.RedirectSlug)
}

func TestAdDetailService_Resolve_NotFound(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ads.On("GetAdByID", mock.Anything, "gone").Return(nil, ErrNotFound)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	_, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "gone"})
	assert.ErrorIs(t, err, ErrAdNotFound)
}

func TestAdDetailService_Resolve_LoadFailure(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(nil, errors.New("connection refused"))

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	_, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.NotErrorIs(t, err, ErrAdNotFound)
}

func TestAdDetailService_Resolve_ServesStaleOnFailure(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	snapshots.Put(context.Background(), "tamales-01", &models.Snapshot{
		Ad: testAd(),
		Variants: []models.Variant{
			{Type: "Chico", Price: 25, MinQuantity: 2, Slug: "chico"},
		},
		Advertiser: &models.AdvertiserInfo{Phone: "5215511112222", DisplayName: "Lupita M."},
		Timestamp:  time.Now().Add(-time.Hour),
	})

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(nil, errors.New("upstream down"))

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01"})
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.True(t, detail.FromCache)
	assert.Equal(t, "Tamales caseros", detail.Ad.Title)
	assert.Equal(t, "Lupita M.", detail.Advertiser.DisplayName)
}

func TestAdDetailService_Resolve_MissingAdID(t *testing.T) {
	svc := NewAdDetailService(&MockAdRepository{}, &MockUserRepository{}, &MockCampaignRepository{}, newFakeSnapshotStore(), log.NewNopLogger())

	_, err := svc.Resolve(context.Background(), models.AdDetailRequest{})
	assert.EqualError(t, err, "missing ad id")
}

func TestAdDetailService_Cached(t *testing.T) {
	// No expectations on any repository: the cached path must not touch them.
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	snapshots.Put(context.Background(), "tamales-01", &models.Snapshot{
		Ad: testAd(),
		Variants: []models.Variant{
			{Type: "Chico", Price: 25, MinQuantity: 2, Slug: "chico"},
		},
		Timestamp: time.Now(),
	})

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, hit := svc.Cached(context.Background(), models.AdDetailRequest{AdID: "tamales-01"})
	require.True(t, hit)
	assert.True(t, detail.FromCache)
	assert.Equal(t, "chico", detail.Selection.RedirectSlug)

	ads.AssertExpectations(t)
	users.AssertExpectations(t)
	campaigns.AssertExpectations(t)
}

func TestAdDetailService_Cached_Miss(t *testing.T) {
	svc := NewAdDetailService(&MockAdRepository{}, &MockUserRepository{}, &MockCampaignRepository{}, newFakeSnapshotStore(), log.NewNopLogger())

	_, hit := svc.Cached(context.Background(), models.AdDetailRequest{AdID: "unknown"})
	assert.False(t, hit)
}

func TestAdDetailService_Others(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ad := testAd()
	now := time.Now()

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(ad, nil)
	users.On("LookupByPhone", mock.Anything, "5215511112222").Return(&models.AdvertiserInfo{
		Phone:       "5215511112222",
		DisplayName: "Lupita M.",
	}, nil)
	ads.On("GetAdsBySeller", mock.Anything, "5215511112222", "tamales-01", 8).Return([]models.Ad{
		{ID: "atole-02", Title: "Atole de fresa", AdvertiserPhone: "5215511112222"},
	}, nil)
	campaigns.On("GetRunningCampaigns", mock.Anything).Return([]models.Campaign{
		{
			ID: "promo-super", Type: models.CampaignCrossPromo, Status: models.StatusActive,
			BudgetCredits: 100, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Categories: []string{"comida"}, Residentials: []string{"res-pinos"},
		},
		{
			ID: "banner-gym", Type: models.CampaignBanner, Status: models.StatusActive,
			BudgetCredits: 100, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Residentials: []string{"res-pinos"},
		},
		{
			ID: "promo-expired", Type: models.CampaignCrossPromo, Status: models.StatusActive,
			BudgetCredits: 100, StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour),
			Categories: []string{"comida"},
		},
	}, nil)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Others(context.Background(), "tamales-01")
	require.NoError(t, err)

	require.NotNil(t, detail.Advertiser)
	assert.Equal(t, "Lupita M.", detail.Advertiser.DisplayName)

	// One seller listing plus the one servable cross promo. Banners and
	// expired campaigns never join the related list.
	require.Len(t, detail.Related, 2)

	var gotAd, gotCampaign bool
	for _, item := range detail.Related {
		switch item.Kind {
		case models.RelatedAd:
			gotAd = true
			assert.Equal(t, "atole-02", item.Ad.ID)
		case models.RelatedCampaign:
			gotCampaign = true
			assert.Equal(t, "promo-super", item.Campaign.CID)
		}
	}
	assert.True(t, gotAd)
	assert.True(t, gotCampaign)
}

func TestAdDetailService_Others_DegradesGracefully(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(testAd(), nil)
	users.On("LookupByPhone", mock.Anything, mock.Anything).Return(nil, ErrNotFound)
	ads.On("GetAdsBySeller", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	campaigns.On("GetRunningCampaigns", mock.Anything).Return(nil, errors.New("db down"))

	svc := NewAdDetailService(ads, users, campaigns, newFakeSnapshotStore(), log.NewNopLogger())

	detail, err := svc.Others(context.Background(), "tamales-01")
	require.NoError(t, err)

	assert.Nil(t, detail.Advertiser)
	assert.Empty(t, detail.Related)
}

func TestAdDetailService_Resolve_SkipsMalformedVariants(t *testing.T) {
	ads := &MockAdRepository{}
	users := &MockUserRepository{}
	campaigns := &MockCampaignRepository{}
	snapshots := newFakeSnapshotStore()

	ad := testAd()
	ad.EncodedVariants = append([]string{"%%%broken%%%"}, ad.EncodedVariants...)

	ads.On("GetAdByID", mock.Anything, "tamales-01").Return(ad, nil)
	allowBackground(ads, users, campaigns)

	svc := NewAdDetailService(ads, users, campaigns, snapshots, log.NewNopLogger())

	detail, err := svc.Resolve(context.Background(), models.AdDetailRequest{AdID: "tamales-01"})
	require.NoError(t, err)

	// The broken entry is dropped, the rest of the set survives.
	require.Len(t, detail.Variants, 2)
	assert.Equal(t, "Chico", detail.Variants[0].Type)
}
