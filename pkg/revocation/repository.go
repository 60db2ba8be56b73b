package revocation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the durable side of the revocation registry
type Store interface {
	// CreateSession records a live refresh-token session for a user
	CreateSession(ctx context.Context, session Session) error

	// DeleteSession removes a live session for (userID, token)
	DeleteSession(ctx context.Context, userID uuid.UUID, tokenStr string) error

	// Revoke removes the live session for (entry.UserID, entry.Token) and
	// inserts the revocation entry as a single durable operation.
	// Revoking an already-revoked token is a no-op.
	Revoke(ctx context.Context, entry Entry) error

	// QueryRevocation looks up a revocation entry by token.
	// Returns (nil, nil) when the token has not been revoked.
	QueryRevocation(ctx context.Context, tokenStr string) (*Entry, error)

	// CleanupExpired deletes revocation entries and sessions whose
	// expires_at has passed (maintenance task)
	CleanupExpired(ctx context.Context, now time.Time) error
}

// Cache defines the fast lookup mirror in front of the durable store.
// The cache is a performance optimization only; a miss always falls
// through to the Store.
type Cache interface {
	// Get returns the cached value for key, reporting whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL stores value under key, expiring after ttl
	SetWithTTL(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes key from the cache
	Delete(ctx context.Context, key string) error
}
