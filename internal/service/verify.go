package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/vecindario/adserver/internal/geo"
	"github.com/vecindario/adserver/internal/kv"
	"github.com/vecindario/adserver/internal/models"
)

// ResidentialRepository resolves residential communities.
type ResidentialRepository interface {
	GetResidentialByID(ctx context.Context, id string) (*models.Residential, error)
}

// CodeSender delivers a verification code to a phone number, typically over
// WhatsApp.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, phone string, code string) error
}

// VerifyService implements phone-based access verification: the caller must
// be physically inside the residential before a code is dispatched.
type VerifyService interface {
	VerifyPhone(ctx context.Context, req models.VerifyPhoneRequest) (models.VerifyPhoneResponse, error)
	ConfirmCode(ctx context.Context, req models.ConfirmCodeRequest) (models.ConfirmCodeResponse, error)
}

const (
	verifyCodeKeyPrefix = "adserver:verify:"
	verifyCodeTTL       = 5 * time.Minute
)

// ErrResidentialNotFound surfaces an unknown residential.
var ErrResidentialNotFound = errors.New("residential not found")

type verifyService struct {
	residentials ResidentialRepository
	sender       CodeSender
	codes        kv.Store
	logger       log.Logger
}

// NewVerifyService creates the access-verification service. Codes live in
// the given store under a short TTL.
func NewVerifyService(residentials ResidentialRepository, sender CodeSender, codes kv.Store, logger log.Logger) VerifyService {
	return &verifyService{
		residentials: residentials,
		sender:       sender,
		codes:        codes,
		logger:       logger,
	}
}

// VerifyPhone checks the caller's reported position against the residential
// boundary and, when inside, sends a verification code.
func (s *verifyService) VerifyPhone(ctx context.Context, req models.VerifyPhoneRequest) (models.VerifyPhoneResponse, error) {
	if err := req.Validate(); err != nil {
		return models.VerifyPhoneResponse{}, err
	}

	res, err := s.residentials.GetResidentialByID(ctx, req.ResidentialID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.VerifyPhoneResponse{}, ErrResidentialNotFound
		}
		return models.VerifyPhoneResponse{}, fmt.Errorf("failed to load residential: %w", err)
	}

	distance := geo.DistanceMeters(req.Latitude, req.Longitude, res.Latitude, res.Longitude)
	if distance > res.RadiusMeters {
		return models.VerifyPhoneResponse{
			Allowed:        false,
			DistanceMeters: distance,
			Reason:         "outside_residential",
		}, nil
	}

	code, err := generateCode()
	if err != nil {
		return models.VerifyPhoneResponse{}, fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.codes.Set(ctx, verifyCodeKeyPrefix+req.Phone, []byte(code), verifyCodeTTL); err != nil {
		return models.VerifyPhoneResponse{}, fmt.Errorf("failed to store code: %w", err)
	}

	resp := models.VerifyPhoneResponse{Allowed: true, DistanceMeters: distance}
	if err := s.sender.SendVerificationCode(ctx, req.Phone, code); err != nil {
		// Delivery is best-effort; the caller may retry.
		level.Warn(s.logger).Log("msg", "verification code send failed", "phone", req.Phone, "err", err)
		return resp, nil
	}

	resp.CodeSent = true
	return resp, nil
}

// ConfirmCode completes verification. Codes are single-use.
func (s *verifyService) ConfirmCode(ctx context.Context, req models.ConfirmCodeRequest) (models.ConfirmCodeResponse, error) {
	if err := req.Validate(); err != nil {
		return models.ConfirmCodeResponse{}, err
	}

	key := verifyCodeKeyPrefix + req.Phone
	stored, err := s.codes.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return models.ConfirmCodeResponse{Verified: false}, nil
		}
		return models.ConfirmCodeResponse{}, fmt.Errorf("failed to load code: %w", err)
	}

	if string(stored) != req.Code {
		return models.ConfirmCodeResponse{Verified: false}, nil
	}

	if err := s.codes.Delete(ctx, key); err != nil {
		level.Warn(s.logger).Log("msg", "failed to clear used code", "phone", req.Phone, "err", err)
	}
	return models.ConfirmCodeResponse{Verified: true}, nil
}

// generateCode produces a 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
