package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vecindario/adserver/internal/endpoint"
	"github.com/vecindario/adserver/internal/middleware"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// NewHTTPHandler creates HTTP handlers for the ad server
func NewHTTPHandler(endpoints endpoint.Endpoints, auth *middleware.AuthMiddleware, metricsHandler http.Handler, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
	}

	getAdDetailHandler := httptransport.NewServer(
		endpoints.GetAdDetailEndpoint,
		decodeGetAdDetailRequest,
		encodeAdDetailResponse,
		options...,
	)
	getAdOthersHandler := httptransport.NewServer(
		endpoints.GetAdOthersEndpoint,
		decodeGetAdOthersRequest,
		encodeAdOthersResponse,
		options...,
	)
	publicCampaignsHandler := httptransport.NewServer(
		endpoints.PublicCampaignsEndpoint,
		decodePublicCampaignsRequest,
		encodePublicCampaignsResponse,
		options...,
	)
	trackHandler := httptransport.NewServer(
		endpoints.TrackCampaignEndpoint,
		decodeTrackRequest,
		encodeTrackResponse,
		options...,
	)
	campaignMetricsHandler := httptransport.NewServer(
		endpoints.CampaignMetricsEndpoint,
		decodeCampaignMetricsRequest,
		encodeCampaignMetricsResponse,
		options...,
	)
	lookupUserHandler := httptransport.NewServer(
		endpoints.LookupUserEndpoint,
		decodeLookupUserRequest,
		encodeLookupUserResponse,
		options...,
	)
	verifyPhoneHandler := httptransport.NewServer(
		endpoints.VerifyPhoneEndpoint,
		decodeVerifyPhoneRequest,
		encodeVerifyPhoneResponse,
		options...,
	)
	confirmCodeHandler := httptransport.NewServer(
		endpoints.ConfirmCodeEndpoint,
		decodeConfirmCodeRequest,
		encodeConfirmCodeResponse,
		options...,
	)
	uploadHandler := httptransport.NewServer(
		endpoints.UploadEndpoint,
		decodeUploadRequest,
		encodeUploadResponse,
		options...,
	)
	deleteObjectHandler := httptransport.NewServer(
		endpoints.DeleteObjectEndpoint,
		decodeDeleteObjectRequest,
		encodeDeleteObjectResponse,
		options...,
	)
	createCampaignHandler := httptransport.NewServer(
		endpoints.CreateCampaignEndpoint,
		decodeCampaignBodyRequest,
		encodeCreateCampaignResponse,
		options...,
	)
	updateCampaignHandler := httptransport.NewServer(
		endpoints.UpdateCampaignEndpoint,
		decodeUpdateCampaignRequest,
		encodeCampaignResponse,
		options...,
	)
	deleteCampaignHandler := httptransport.NewServer(
		endpoints.DeleteCampaignEndpoint,
		decodeCampaignIDRequest(func(id string) any { return endpoint.DeleteCampaignRequest{CampaignID: id} }),
		encodeDeleteCampaignResponse,
		options...,
	)
	getCampaignHandler := httptransport.NewServer(
		endpoints.GetCampaignEndpoint,
		decodeCampaignIDRequest(func(id string) any { return endpoint.GetCampaignRequest{CampaignID: id} }),
		encodeCampaignResponse,
		options...,
	)

	r := mux.NewRouter()

	// Ad detail resolution
	r.Handle("/api/ads/{id}/others", getAdOthersHandler).Methods("GET")
	r.Handle("/api/ads/{id}", getAdDetailHandler).Methods("GET")

	// Paid campaigns
	r.Handle("/api/paid-ads/public", publicCampaignsHandler).Methods("GET")
	r.Handle("/api/paid-ads/track", trackHandler).Methods("POST")
	r.Handle("/api/paid-ads/{id}/metrics", campaignMetricsHandler).Methods("GET")

	// Advertiser identity and access verification
	r.Handle("/api/users/lookup", lookupUserHandler).Methods("GET")
	r.Handle("/api/verify-phone", verifyPhoneHandler).Methods("POST")
	r.Handle("/api/verify-phone/confirm", confirmCodeHandler).Methods("POST")

	// Object storage, behind JWT auth
	storage := r.PathPrefix("/api/storage").Subrouter()
	storage.Use(auth.Middleware)
	storage.Handle("/upload", uploadHandler).Methods("POST")
	storage.Handle("/delete", deleteObjectHandler).Methods("DELETE")

	// Admin surface, behind JWT auth
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware)
	admin.Handle("/campaigns", createCampaignHandler).Methods("POST")
	admin.Handle("/campaigns/{id}", getCampaignHandler).Methods("GET")
	admin.Handle("/campaigns/{id}", updateCampaignHandler).Methods("PUT")
	admin.Handle("/campaigns/{id}", deleteCampaignHandler).Methods("DELETE")

	// Health check and Prometheus metrics
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", metricsHandler).Methods("GET")

	return r
}

// decodeGetAdDetailRequest decodes the ad id path var and the optional
// variant slug query param.
func decodeGetAdDetailRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)

	req := endpoint.GetAdDetailRequest{
		AdDetailRequest: models.AdDetailRequest{
			AdID:        vars["id"],
			VariantSlug: r.URL.Query().Get("variant"),
		},
	}
	if err := req.AdDetailRequest.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeGetAdOthersRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	if vars["id"] == "" {
		return nil, errors.New("missing ad id")
	}
	return endpoint.GetAdOthersRequest{AdID: vars["id"]}, nil
}

func decodePublicCampaignsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	query := r.URL.Query()

	req := endpoint.PublicCampaignsRequest{
		Request: models.PublicCampaignsRequest{
			ResidentialID: query.Get("residencial"),
			Category:      query.Get("categoria"),
			Type:          models.CampaignType(query.Get("type")),
		},
	}
	if err := req.Request.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeTrackRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid track payload")
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return endpoint.TrackCampaignRequest{Request: body}, nil
}

func decodeCampaignMetricsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	if vars["id"] == "" {
		return nil, errors.New("missing campaign id")
	}
	return endpoint.CampaignMetricsRequest{CampaignID: vars["id"]}, nil
}

func decodeLookupUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	phone := strings.TrimSpace(r.URL.Query().Get("celular"))
	if phone == "" {
		return nil, errors.New("missing phone param")
	}
	return endpoint.LookupUserRequest{Phone: phone}, nil
}

func decodeVerifyPhoneRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.VerifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid verification payload")
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return endpoint.VerifyPhoneRequest{Request: body}, nil
}

func decodeConfirmCodeRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.ConfirmCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid confirmation payload")
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return endpoint.ConfirmCodeRequest{Request: body}, nil
}

// decodeUploadRequest reads a multipart form with a single "file" part. The
// stored key keeps the original extension but gets a fresh UUID name so
// uploads never collide.
func decodeUploadRequest(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid upload payload")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file param")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := "campaigns/" + uuid.New().String() + filepath.Ext(header.Filename)
	return endpoint.UploadRequest{
		Key:         key,
		ContentType: contentType,
		Body:        file,
	}, nil
}

func decodeDeleteObjectRequest(_ context.Context, r *http.Request) (interface{}, error) {
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		return nil, errors.New("missing key param")
	}
	return endpoint.DeleteObjectRequest{Key: key}, nil
}

func decodeCampaignBodyRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid campaign payload")
	}
	return endpoint.CampaignRequest{Campaign: body}, nil
}

func decodeUpdateCampaignRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid campaign payload")
	}
	// The path var wins over any id in the body
	body.ID = mux.Vars(r)["id"]
	return endpoint.CampaignRequest{Campaign: body}, nil
}

func decodeCampaignIDRequest(wrap func(id string) any) httptransport.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		vars := mux.Vars(r)
		if vars["id"] == "" {
			return nil, errors.New("missing campaign id")
		}
		return wrap(vars["id"]), nil
	}
}

func encodeAdDetailResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.GetAdDetailResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Detail)
}

func encodeAdOthersResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.GetAdOthersResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Detail)
}

func encodePublicCampaignsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.PublicCampaignsResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	if len(resp.Campaigns) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Campaigns)
}

func encodeTrackResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.TrackCampaignResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func encodeCampaignMetricsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignMetricsResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Metrics)
}

func encodeLookupUserResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.LookupUserResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.User)
}

func encodeVerifyPhoneResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.VerifyPhoneResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	// A rejected attempt is still a well-formed answer, not an error
	return encodeJSON(w, http.StatusOK, resp.Result)
}

func encodeConfirmCodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.ConfirmCodeResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Result)
}

func encodeUploadResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.UploadResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusCreated, resp.Result)
}

func encodeDeleteObjectResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.DeleteObjectResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func encodeCreateCampaignResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return encodeJSON(w, http.StatusCreated, resp.Campaign)
}

func encodeCampaignResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	if resp.Campaign == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return encodeJSON(w, http.StatusOK, resp.Campaign)
}

func encodeDeleteCampaignResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func encodeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// encodeError maps service errors to HTTP status codes
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, service.ErrAdNotFound),
		errors.Is(err, service.ErrCampaignNotFound),
		errors.Is(err, service.ErrResidentialNotFound),
		errors.Is(err, service.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case strings.HasPrefix(err.Error(), "missing ") ||
		strings.HasPrefix(err.Error(), "invalid "):
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	json.NewEncoder(w).Encode(models.NewErrorResponse(err.Error()))
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "adserver",
		"version": Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Version is set at build time via ldflags.
var Version = "dev"
