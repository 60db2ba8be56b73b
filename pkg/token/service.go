package token

import (
	"time"
)

// Token type constants
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour // 604800 seconds
)

// Token is an issued token string together with its expiry
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Service issues and validates the access/refresh token pair
type Service struct {
	generator TokenGenerator

	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		s.AccessTokenExpiry = expiry
	}
}

// WithRefreshTokenExpiry sets the refresh token expiry duration
func WithRefreshTokenExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		s.RefreshTokenExpiry = expiry
	}
}

// NewService creates a token Service around the given generator
func NewService(generator TokenGenerator, options ...Option) *Service {
	s := &Service{
		generator:          generator,
		AccessTokenExpiry:  DefaultAccessTokenExpiry,
		RefreshTokenExpiry: DefaultRefreshTokenExpiry,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// IssueAccessToken issues a short-lived access token for the identity
func (s *Service) IssueAccessToken(identity Identity) (Token, error) {
	value, expiresAt, err := s.generator.GenerateToken(identity.ID.String(), s.AccessTokenExpiry, identity)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

// IssueRefreshToken issues a long-lived refresh token for the identity
func (s *Service) IssueRefreshToken(identity Identity) (Token, error) {
	value, expiresAt, err := s.generator.GenerateToken(identity.ID.String(), s.RefreshTokenExpiry, identity)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: expiresAt}, nil
}

// Verify cryptographically validates a token and returns its claims.
// Revocation is checked by the caller; see login.AuthService.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	return s.generator.ParseToken(tokenStr)
}

// Decode returns a token's claims without verifying the signature
func (s *Service) Decode(tokenStr string) (*Claims, error) {
	return DecodeToken(tokenStr)
}
