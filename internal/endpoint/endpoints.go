package endpoint

import (
	"context"
	"io"

	"github.com/go-kit/kit/endpoint"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// Endpoints holds all endpoints for the ad server
type Endpoints struct {
	GetAdDetailEndpoint     endpoint.Endpoint
	GetAdOthersEndpoint     endpoint.Endpoint
	PublicCampaignsEndpoint endpoint.Endpoint
	TrackCampaignEndpoint   endpoint.Endpoint
	CampaignMetricsEndpoint endpoint.Endpoint
	LookupUserEndpoint      endpoint.Endpoint
	VerifyPhoneEndpoint     endpoint.Endpoint
	ConfirmCodeEndpoint     endpoint.Endpoint
	UploadEndpoint          endpoint.Endpoint
	DeleteObjectEndpoint    endpoint.Endpoint

	CreateCampaignEndpoint endpoint.Endpoint
	UpdateCampaignEndpoint endpoint.Endpoint
	DeleteCampaignEndpoint endpoint.Endpoint
	GetCampaignEndpoint    endpoint.Endpoint
}

// Services bundles everything the endpoints are built over.
type Services struct {
	AdDetail  service.AdDetailService
	Promo     service.PromoService
	Campaigns service.CampaignService
	Verify    service.VerifyService
	Users     service.UserRepository
	Storage   service.ObjectStorage
}

// MakeEndpoints creates all endpoints
func MakeEndpoints(s Services) Endpoints {
	return Endpoints{
		GetAdDetailEndpoint:     makeGetAdDetailEndpoint(s.AdDetail),
		GetAdOthersEndpoint:     makeGetAdOthersEndpoint(s.AdDetail),
		PublicCampaignsEndpoint: makePublicCampaignsEndpoint(s.Promo),
		TrackCampaignEndpoint:   makeTrackCampaignEndpoint(s.Promo),
		CampaignMetricsEndpoint: makeCampaignMetricsEndpoint(s.Promo),
		LookupUserEndpoint:      makeLookupUserEndpoint(s.Users),
		VerifyPhoneEndpoint:     makeVerifyPhoneEndpoint(s.Verify),
		ConfirmCodeEndpoint:     makeConfirmCodeEndpoint(s.Verify),
		UploadEndpoint:          makeUploadEndpoint(s.Storage),
		DeleteObjectEndpoint:    makeDeleteObjectEndpoint(s.Storage),
		CreateCampaignEndpoint:  makeCreateCampaignEndpoint(s.Campaigns),
		UpdateCampaignEndpoint:  makeUpdateCampaignEndpoint(s.Campaigns),
		DeleteCampaignEndpoint:  makeDeleteCampaignEndpoint(s.Campaigns),
		GetCampaignEndpoint:     makeGetCampaignEndpoint(s.Campaigns),
	}
}

// GetAdDetailRequest represents the request for resolving an ad detail view
type GetAdDetailRequest struct {
	AdDetailRequest models.AdDetailRequest
}

// GetAdDetailResponse represents the resolved ad detail view
type GetAdDetailResponse struct {
	Detail *models.AdDetail `json:"detail,omitempty"`
	Err    error            `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r GetAdDetailResponse) Failed() error { return r.Err }

func makeGetAdDetailEndpoint(s service.AdDetailService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GetAdDetailRequest)
		detail, err := s.Resolve(ctx, req.AdDetailRequest)
		return GetAdDetailResponse{Detail: detail, Err: err}, nil
	}
}

// GetAdOthersRequest asks for the secondary data of one ad
type GetAdOthersRequest struct {
	AdID string
}

// GetAdOthersResponse carries advertiser identity and related items
type GetAdOthersResponse struct {
	Detail *models.AdDetail `json:"detail,omitempty"`
	Err    error            `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r GetAdOthersResponse) Failed() error { return r.Err }

func makeGetAdOthersEndpoint(s service.AdDetailService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GetAdOthersRequest)
		detail, err := s.Others(ctx, req.AdID)
		return GetAdOthersResponse{Detail: detail, Err: err}, nil
	}
}

// PublicCampaignsRequest wraps the audience filter
type PublicCampaignsRequest struct {
	Request models.PublicCampaignsRequest
}

// PublicCampaignsResponse lists servable campaigns
type PublicCampaignsResponse struct {
	Campaigns []models.CampaignResponse `json:"campaigns,omitempty"`
	Err       error                     `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r PublicCampaignsResponse) Failed() error { return r.Err }

func makePublicCampaignsEndpoint(s service.PromoService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(PublicCampaignsRequest)
		campaigns, err := s.PublicCampaigns(ctx, req.Request)
		return PublicCampaignsResponse{Campaigns: campaigns, Err: err}, nil
	}
}

// TrackCampaignRequest wraps one interaction event
type TrackCampaignRequest struct {
	Request models.TrackRequest
}

// TrackCampaignResponse acknowledges a tracked event
type TrackCampaignResponse struct {
	Err error `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r TrackCampaignResponse) Failed() error { return r.Err }

func makeTrackCampaignEndpoint(s service.PromoService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(TrackCampaignRequest)
		err := s.Track(ctx, req.Request)
		return TrackCampaignResponse{Err: err}, nil
	}
}

// CampaignMetricsRequest identifies the campaign
type CampaignMetricsRequest struct {
	CampaignID string
}

// CampaignMetricsResponse carries the performance summary
type CampaignMetricsResponse struct {
	Metrics models.CampaignMetrics `json:"metrics"`
	Err     error                  `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r CampaignMetricsResponse) Failed() error { return r.Err }

func makeCampaignMetricsEndpoint(s service.PromoService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(CampaignMetricsRequest)
		m, err := s.Metrics(ctx, req.CampaignID)
		return CampaignMetricsResponse{Metrics: m, Err: err}, nil
	}
}

// LookupUserRequest identifies the advertiser by phone
type LookupUserRequest struct {
	Phone string
}

// LookupUserResponse carries the display identity
type LookupUserResponse struct {
	User *models.AdvertiserInfo `json:"user,omitempty"`
	Err  error                  `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r LookupUserResponse) Failed() error { return r.Err }

func makeLookupUserEndpoint(users service.UserRepository) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(LookupUserRequest)
		user, err := users.LookupByPhone(ctx, req.Phone)
		return LookupUserResponse{User: user, Err: err}, nil
	}
}

// VerifyPhoneRequest wraps the verification attempt
type VerifyPhoneRequest struct {
	Request models.VerifyPhoneRequest
}

// VerifyPhoneResponse carries the verification outcome
type VerifyPhoneResponse struct {
	Result models.VerifyPhoneResponse `json:"result"`
	Err    error                      `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r VerifyPhoneResponse) Failed() error { return r.Err }

func makeVerifyPhoneEndpoint(s service.VerifyService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(VerifyPhoneRequest)
		result, err := s.VerifyPhone(ctx, req.Request)
		return VerifyPhoneResponse{Result: result, Err: err}, nil
	}
}

// ConfirmCodeRequest wraps the code confirmation
type ConfirmCodeRequest struct {
	Request models.ConfirmCodeRequest
}

// ConfirmCodeResponse carries the confirmation outcome
type ConfirmCodeResponse struct {
	Result models.ConfirmCodeResponse `json:"result"`
	Err    error                      `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r ConfirmCodeResponse) Failed() error { return r.Err }

func makeConfirmCodeEndpoint(s service.VerifyService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(ConfirmCodeRequest)
		result, err := s.ConfirmCode(ctx, req.Request)
		return ConfirmCodeResponse{Result: result, Err: err}, nil
	}
}

// UploadRequest carries one object to store
type UploadRequest struct {
	Key         string
	ContentType string
	Body        io.Reader
}

// UploadResponse returns the stored object location
type UploadResponse struct {
	Result models.UploadResponse `json:"result"`
	Err    error                 `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r UploadResponse) Failed() error { return r.Err }

func makeUploadEndpoint(storage service.ObjectStorage) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(UploadRequest)
		url, err := storage.Upload(ctx, req.Key, req.ContentType, req.Body)
		return UploadResponse{
			Result: models.UploadResponse{Key: req.Key, URL: url},
			Err:    err,
		}, nil
	}
}

// DeleteObjectRequest identifies the object to remove
type DeleteObjectRequest struct {
	Key string
}

// DeleteObjectResponse acknowledges the removal
type DeleteObjectResponse struct {
	Err error `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r DeleteObjectResponse) Failed() error { return r.Err }

func makeDeleteObjectEndpoint(storage service.ObjectStorage) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(DeleteObjectRequest)
		err := storage.Delete(ctx, req.Key)
		return DeleteObjectResponse{Err: err}, nil
	}
}

// CampaignRequest wraps a campaign payload for create/update
type CampaignRequest struct {
	Campaign models.Campaign
}

// CampaignResponse carries one campaign
type CampaignResponse struct {
	Campaign *models.Campaign `json:"campaign,omitempty"`
	Err      error            `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r CampaignResponse) Failed() error { return r.Err }

func makeCreateCampaignEndpoint(s service.CampaignService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(CampaignRequest)
		c, err := s.Create(ctx, &req.Campaign)
		return CampaignResponse{Campaign: c, Err: err}, nil
	}
}

func makeUpdateCampaignEndpoint(s service.CampaignService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(CampaignRequest)
		err := s.Update(ctx, &req.Campaign)
		return CampaignResponse{Campaign: &req.Campaign, Err: err}, nil
	}
}

// DeleteCampaignRequest identifies the campaign to remove
type DeleteCampaignRequest struct {
	CampaignID string
}

func makeDeleteCampaignEndpoint(s service.CampaignService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(DeleteCampaignRequest)
		err := s.Delete(ctx, req.CampaignID)
		return CampaignResponse{Err: err}, nil
	}
}

// GetCampaignRequest identifies the campaign to fetch
type GetCampaignRequest struct {
	CampaignID string
}

func makeGetCampaignEndpoint(s service.CampaignService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GetCampaignRequest)
		c, err := s.Get(ctx, req.CampaignID)
		return CampaignResponse{Campaign: c, Err: err}, nil
	}
}
