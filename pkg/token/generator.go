package token

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
)

// DefaultIssuer is the issuer claim stamped into every token
const DefaultIssuer = "SIPE"

// Permission is the access level embedded in issued tokens
type Permission string

const (
	PermissionNormal Permission = "Normal"
	PermissionRH     Permission = "RH"
	PermissionAdmin  Permission = "Admin"
)

// Valid reports whether p is one of the known permission levels
func (p Permission) Valid() bool {
	switch p {
	case PermissionNormal, PermissionRH, PermissionAdmin:
		return true
	}
	return false
}

// Identity is the fixed identity snapshot carried by every token.
// The schema is closed on purpose: decode rejects tokens whose identity
// section does not line up with it.
type Identity struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name,omitempty"`
	CPF        string     `json:"cpf,omitempty"`
	Permission Permission `json:"permission"`
}

// Claims is the JWT payload: identity snapshot plus registered claims
type Claims struct {
	Identity Identity `json:"identity"`
	jwt.RegisteredClaims
}

// TokenGenerator interface defines methods for token operations
type TokenGenerator interface {
	// GenerateToken generates a signed token for the subject carrying the identity snapshot
	GenerateToken(subject string, expiry time.Duration, identity Identity) (string, time.Time, error)

	// ParseToken parses and validates a token, returning its claims
	ParseToken(tokenStr string) (*Claims, error)
}

// JwtTokenGenerator implements TokenGenerator with an HMAC-SHA-256 signature
// over a service-wide secret. Both access and refresh tokens are signed with
// the same secret.
type JwtTokenGenerator struct {
	Secret string
	Issuer string
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator
func NewJwtTokenGenerator(secret, issuer string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret: secret,
		Issuer: issuer,
	}
}

// GenerateToken creates a new signed token for the given subject
func (g *JwtTokenGenerator) GenerateToken(subject string, expiry time.Duration, identity Identity) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-5 * time.Minute)),
			Issuer:    g.Issuer,
			Subject:   subject,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed to sign JWT claims", "err", err)
		return "", time.Time{}, errs.Wrap(err, errs.CodeInternal, "failed to sign token")
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses a token string, checking signature, expiry and issuer.
// Failures come back tagged as CodeTokenExpired or CodeTokenInvalid.
func (g *JwtTokenGenerator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(g.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.Wrap(err, errs.CodeTokenExpired, "token has expired")
		}
		return nil, errs.Wrap(err, errs.CodeTokenInvalid, "token validation failed")
	}
	if !token.Valid {
		return nil, errs.New(errs.CodeTokenInvalid, "token is not valid")
	}
	if !claims.Identity.Permission.Valid() {
		return nil, errs.New(errs.CodeTokenInvalid, "token carries an unknown permission claim")
	}
	return claims, nil
}

// DecodeToken extracts claims without verifying the signature. The result
// must never feed an authorization decision; it exists so logout can recover
// the owner of a token that may already be expired.
func DecodeToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeTokenInvalid, "failed to decode token")
	}
	return claims, nil
}
