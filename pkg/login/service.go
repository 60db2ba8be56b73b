package login

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
	"github.com/sipe-hr/sipe-auth/pkg/revocation"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Employee     *Employee
	AccessToken  token.Token
	RefreshToken token.Token
}

// AuthService orchestrates credential verification, token issuance,
// revocation and the lockout governor.
type AuthService struct {
	repo     CredentialRepository
	hasher   PasswordHasher
	tokens   *token.Service
	registry *revocation.Registry
	governor *AttemptGovernor
}

func NewAuthService(
	repo CredentialRepository,
	hasher PasswordHasher,
	tokens *token.Service,
	registry *revocation.Registry,
	governor *AttemptGovernor,
) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		registry: registry,
		governor: governor,
	}
}

// Login verifies the credentials and issues the access/refresh token pair.
// An unknown identifier and a wrong password are indistinguishable to the
// caller. A locked account is rejected with AccountLocked even when the
// password is correct. Success is only reported after the refresh session
// has been durably persisted.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	employee, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreUnavailable, "failed to look up credentials")
	}
	if employee == nil || !employee.Active {
		return nil, errs.New(errs.CodeInvalidCredentials, "invalid credentials")
	}

	if employee.Locked {
		slog.Info("Login rejected for locked account", "userId", employee.ID)
		return nil, errs.New(errs.CodeAccountLocked, "account is locked")
	}

	match, err := s.hasher.Verify(password, employee.PasswordHash)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to verify password")
	}
	if !match {
		locked, govErr := s.governor.RecordFailure(ctx, employee)
		if govErr != nil {
			return nil, errs.Wrap(govErr, errs.CodeStoreUnavailable, "failed to record login failure")
		}
		if locked {
			return nil, errs.New(errs.CodeAccountLocked, "account is locked")
		}
		return nil, errs.New(errs.CodeInvalidCredentials, "invalid credentials")
	}

	if err := s.governor.RecordSuccess(ctx, employee); err != nil {
		// The login itself succeeded; a stale counter corrects itself on
		// the next successful login.
		slog.Warn("Failed to reset login attempts", "userId", employee.ID, "err", err)
	}

	identity := employee.Identity()

	accessToken, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to issue access token")
	}
	refreshToken, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeInternal, "failed to issue refresh token")
	}

	// The session must be durable before the caller hears "logged in",
	// otherwise logout would have nothing to revoke.
	if err := s.registry.RegisterSession(ctx, employee.ID, refreshToken.Value, refreshToken.ExpiresAt); err != nil {
		return nil, err
	}

	slog.Info("Login succeeded",
		"userId", employee.ID, "token", token.Mask(accessToken.Value))

	return &LoginResult{
		Employee:     employee,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the refresh token. The token is decoded without signature
// verification so an expired session can still be logged out; revoking the
// same token twice is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		return errs.Wrap(err, errs.CodeTokenInvalid, "cannot decode refresh token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return errs.New(errs.CodeTokenInvalid, "refresh token carries no recoverable identity")
	}

	expiresAt := time.Now().Add(s.tokens.RefreshTokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return s.registry.Revoke(ctx, userID, refreshToken, expiresAt)
}

// VerifyAccessToken validates an access token cryptographically and against
// the revocation registry. TokenExpired, TokenInvalid and TokenRevoked are
// distinct outcomes so middleware can decide between reject and refresh.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenStr string) (*token.Claims, error) {
	return s.verify(ctx, tokenStr)
}

// VerifyRefreshToken validates a refresh token cryptographically and against
// the revocation registry.
func (s *AuthService) VerifyRefreshToken(ctx context.Context, tokenStr string) (*token.Claims, error) {
	return s.verify(ctx, tokenStr)
}

func (s *AuthService) verify(ctx context.Context, tokenStr string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}

	revoked, err := s.registry.IsRevoked(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errs.New(errs.CodeTokenRevoked, "token has been revoked")
	}

	return claims, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (token.Token, *token.Claims, error) {
	claims, err := s.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return token.Token{}, nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(claims.Identity)
	if err != nil {
		return token.Token{}, nil, errs.Wrap(err, errs.CodeInternal, "failed to issue access token")
	}

	slog.Info("Access token refreshed",
		"userId", claims.Identity.ID, "token", token.Mask(accessToken.Value))

	return accessToken, claims, nil
}
