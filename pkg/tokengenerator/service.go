package tokengenerator

import (
	"fmt"
	"log/slog"
	"time"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry  = 1 * time.Hour
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenService issues and verifies signed, time-bounded access and refresh
// tokens. Access and refresh tokens are signed with independent secrets and
// carry independent expiry windows so a leaked access token has a bounded
// blast radius while a session can persist via refresh.
type TokenService interface {
	SignAccessToken(subject, username string) (string, time.Time, error)
	SignRefreshToken(subject, username string) (string, time.Time, error)
	VerifyAccessToken(tokenStr string) (*Claims, error)
	VerifyRefreshToken(tokenStr string) (*Claims, error)
}

// DefaultTokenService implements TokenService on top of two token generators
type DefaultTokenService struct {
	accessTokenGenerator  TokenGenerator
	refreshTokenGenerator TokenGenerator

	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// Option configures a DefaultTokenService
type Option func(*DefaultTokenService)

// parseDurationValue parses either a string or time.Duration into time.Duration
func parseDurationValue(v interface{}) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		if val == "" {
			return 0, nil
		}
		return time.ParseDuration(val)
	default:
		return 0, fmt.Errorf("invalid duration type: %T", v)
	}
}

// WithAccessTokenExpiry sets the access token expiry duration
// Accepts either time.Duration or string (e.g., "1h", "30m")
func WithAccessTokenExpiry(expiry interface{}) Option {
	return func(s *DefaultTokenService) {
		if d, err := parseDurationValue(expiry); err == nil && d > 0 {
			s.accessTokenExpiry = d
		} else if err != nil {
			slog.Error("Failed to parse access token expiry", "err", err, "value", expiry)
		}
	}
}

// WithRefreshTokenExpiry sets the refresh token expiry duration
// Accepts either time.Duration or string (e.g., "168h", "24h")
func WithRefreshTokenExpiry(expiry interface{}) Option {
	return func(s *DefaultTokenService) {
		if d, err := parseDurationValue(expiry); err == nil && d > 0 {
			s.refreshTokenExpiry = d
		} else if err != nil {
			slog.Error("Failed to parse refresh token expiry", "err", err, "value", expiry)
		}
	}
}

// NewTokenService creates a token service with separate access and refresh
// secrets. An empty refresh secret falls back to the access secret.
func NewTokenService(accessSecret, refreshSecret, issuer, audience string, opts ...Option) *DefaultTokenService {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}

	service := &DefaultTokenService{
		accessTokenGenerator:  NewJwtTokenGenerator(accessSecret, issuer, audience),
		refreshTokenGenerator: NewJwtTokenGenerator(refreshSecret, issuer, audience),
		accessTokenExpiry:     DefaultAccessTokenExpiry,
		refreshTokenExpiry:    DefaultRefreshTokenExpiry,
	}

	for _, opt := range opts {
		opt(service)
	}

	slog.Info("Token service configured",
		"accessTokenExpiry", service.accessTokenExpiry,
		"refreshTokenExpiry", service.refreshTokenExpiry,
		"distinct refresh secret", refreshSecret != accessSecret)

	return service
}

// SignAccessToken signs a short-lived access token for the given subject
func (s *DefaultTokenService) SignAccessToken(subject, username string) (string, time.Time, error) {
	return s.accessTokenGenerator.GenerateToken(subject, username, s.accessTokenExpiry)
}

// SignRefreshToken signs a long-lived refresh token for the given subject
func (s *DefaultTokenService) SignRefreshToken(subject, username string) (string, time.Time, error) {
	return s.refreshTokenGenerator.GenerateToken(subject, username, s.refreshTokenExpiry)
}

// VerifyAccessToken verifies a token against the access secret
func (s *DefaultTokenService) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return s.accessTokenGenerator.ParseToken(tokenStr)
}

// VerifyRefreshToken verifies a token against the refresh secret
func (s *DefaultTokenService) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return s.refreshTokenGenerator.ParseToken(tokenStr)
}
