package revocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// RevokedKeyPrefix namespaces denylist keys in the cache
const RevokedKeyPrefix = "revoked-token:"

// Registry is the token denylist: a durable store mirrored by a
// fast cache. The durable store is the source of truth; the cache only
// shortcuts the common lookup.
type Registry struct {
	store Store
	cache Cache
}

// NewRegistry creates a Registry over the given store and cache
func NewRegistry(store Store, cache Cache) *Registry {
	return &Registry{
		store: store,
		cache: cache,
	}
}

func revokedKey(tokenStr string) string {
	return RevokedKeyPrefix + tokenStr
}

// RegisterSession persists a freshly issued refresh token so it can be
// found and invalidated at logout. Login must not report success until
// this has completed.
func (r *Registry) RegisterSession(ctx context.Context, userID uuid.UUID, tokenStr string, expiresAt time.Time) error {
	err := r.store.CreateSession(ctx, Session{
		UserID:    userID,
		Token:     tokenStr,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreUnavailable, "failed to persist refresh session")
	}
	return nil
}

// IsRevoked reports whether a token has been revoked. Cache first; on a
// miss the durable store decides. A durable hit re-populates the cache for
// the token's remaining lifetime. Misses are never negative-cached, so a
// concurrent revocation is visible on the next lookup.
func (r *Registry) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	key := revokedKey(tokenStr)

	cached, found, err := r.cache.Get(ctx, key)
	if err != nil {
		// The durable store, not the cache, is authoritative; degrade to it.
		slog.Warn("Revocation cache unavailable, falling back to durable store",
			"err", err, "token", token.Mask(tokenStr))
	} else if found && cached == "true" {
		return true, nil
	}

	entry, err := r.store.QueryRevocation(ctx, tokenStr)
	if err != nil {
		return false, errs.Wrap(err, errs.CodeStoreUnavailable, "failed to query revocation store")
	}
	if entry == nil {
		return false, nil
	}

	if ttl := time.Until(entry.ExpiresAt); ttl > 0 {
		if err := r.cache.SetWithTTL(ctx, key, "true", ttl); err != nil {
			slog.Warn("Failed to re-populate revocation cache",
				"err", err, "token", token.Mask(tokenStr))
		}
	}
	return true, nil
}

// Revoke invalidates a token: the live session is deleted and the
// revocation entry inserted in one durable operation, then the denylist
// flag is written through to the cache. If the durable write fails the
// cache is left untouched, so a lookup can never report a revocation that
// is not durable. Revoking the same token twice is a no-op.
func (r *Registry) Revoke(ctx context.Context, userID uuid.UUID, tokenStr string, expiresAt time.Time) error {
	entry := Entry{
		Token:     tokenStr,
		UserID:    userID,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}

	if err := r.store.Revoke(ctx, entry); err != nil {
		return errs.Wrap(err, errs.CodeStoreUnavailable, "failed to revoke token")
	}

	slog.Info("Token revoked", "userId", userID, "token", token.Mask(tokenStr))

	if ttl := time.Until(expiresAt); ttl > 0 {
		if err := r.cache.SetWithTTL(ctx, revokedKey(tokenStr), "true", ttl); err != nil {
			// Revocation is already durable; the next lookup falls through
			// to the store.
			slog.Warn("Failed to write revocation through to cache",
				"err", err, "token", token.Mask(tokenStr))
		}
	}
	return nil
}

// CleanupExpired removes entries and sessions past their expiry
// (maintenance task)
func (r *Registry) CleanupExpired(ctx context.Context) error {
	if err := r.store.CleanupExpired(ctx, time.Now().UTC()); err != nil {
		return errs.Wrap(err, errs.CodeStoreUnavailable, "failed to clean up expired revocations")
	}
	return nil
}
