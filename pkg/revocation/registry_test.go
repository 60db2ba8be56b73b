package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
)

// failingCache simulates an unavailable cache backend
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) Delete(ctx context.Context, key string) error {
	return errors.New("cache down")
}

// failingStore simulates an unavailable durable store
type failingStore struct{}

func (failingStore) CreateSession(ctx context.Context, session Session) error {
	return errors.New("store down")
}

func (failingStore) DeleteSession(ctx context.Context, userID uuid.UUID, tokenStr string) error {
	return errors.New("store down")
}

func (failingStore) Revoke(ctx context.Context, entry Entry) error {
	return errors.New("store down")
}

func (failingStore) QueryRevocation(ctx context.Context, tokenStr string) (*Entry, error) {
	return nil, errors.New("store down")
}

func (failingStore) CleanupExpired(ctx context.Context, now time.Time) error {
	return errors.New("store down")
}

func TestRevokeAndIsRevoked(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	cache := NewInMemoryCache()
	registry := NewRegistry(store, cache)

	userID := uuid.New()
	tokenStr := "refresh-token-" + uuid.New().String()
	expiresAt := time.Now().Add(7 * 24 * time.Hour)

	revoked, err := registry.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, registry.Revoke(ctx, userID, tokenStr, expiresAt))

	revoked, err = registry.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	assert.True(t, revoked, "a revoked token stays revoked before its natural expiry")
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(NewInMemoryStore(), NewInMemoryCache())

	userID := uuid.New()
	tokenStr := "refresh-token-" + uuid.New().String()
	expiresAt := time.Now().Add(time.Hour)

	require.NoError(t, registry.Revoke(ctx, userID, tokenStr, expiresAt))
	require.NoError(t, registry.Revoke(ctx, userID, tokenStr, expiresAt), "second revoke is a no-op")

	revoked, err := registry.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevokedFallsBackToDurableStoreOnCacheMiss(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	cache := NewInMemoryCache()

	tokenStr := "refresh-token-" + uuid.New().String()
	entry := Entry{
		Token:     tokenStr,
		UserID:    uuid.New(),
		RevokedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Revoke(ctx, entry))

	// Cold cache: correctness must not depend on cache warm state
	registry := NewRegistry(store, cache)
	revoked, err := registry.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	assert.True(t, revoked)

	// The durable hit re-populated the cache
	value, found, err := cache.Get(ctx, revokedKey(tokenStr))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", value)
}

func TestIsRevokedDoesNotNegativeCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()
	registry := NewRegistry(NewInMemoryStore(), cache)

	revoked, err := registry.IsRevoked(ctx, "never-revoked")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 0, cache.Len(), "a miss must not be cached, or a concurrent revocation would be masked")
}

func TestIsRevokedSurvivesCacheOutage(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	tokenStr := "refresh-token-" + uuid.New().String()
	require.NoError(t, store.Revoke(ctx, Entry{
		Token:     tokenStr,
		UserID:    uuid.New(),
		RevokedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	registry := NewRegistry(store, failingCache{})
	revoked, err := registry.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeSucceedsWhenCacheWriteFails(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	registry := NewRegistry(store, failingCache{})

	tokenStr := "refresh-token-" + uuid.New().String()
	err := registry.Revoke(ctx, uuid.New(), tokenStr, time.Now().Add(time.Hour))
	require.NoError(t, err, "revocation is durable even when the cache write fails")

	entry, err := store.QueryRevocation(ctx, tokenStr)
	require.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestRevokeFailsWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()
	registry := NewRegistry(failingStore{}, cache)

	tokenStr := "refresh-token-" + uuid.New().String()
	err := registry.Revoke(ctx, uuid.New(), tokenStr, time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeStoreUnavailable))

	// The cache must not claim a revocation that is not durable
	_, found, getErr := cache.Get(ctx, revokedKey(tokenStr))
	require.NoError(t, getErr)
	assert.False(t, found)
}

func TestRevokeDeletesLiveSession(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	registry := NewRegistry(store, NewInMemoryCache())

	userID := uuid.New()
	tokenStr := "refresh-token-" + uuid.New().String()
	expiresAt := time.Now().Add(time.Hour)

	require.NoError(t, registry.RegisterSession(ctx, userID, tokenStr, expiresAt))
	assert.True(t, store.HasSession(userID, tokenStr))

	require.NoError(t, registry.Revoke(ctx, userID, tokenStr, expiresAt))
	assert.False(t, store.HasSession(userID, tokenStr))
}

func TestCleanupExpiredKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	registry := NewRegistry(store, NewInMemoryCache())

	liveToken := "live-" + uuid.New().String()
	expiredToken := "expired-" + uuid.New().String()

	require.NoError(t, store.Revoke(ctx, Entry{
		Token:     liveToken,
		UserID:    uuid.New(),
		RevokedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.Revoke(ctx, Entry{
		Token:     expiredToken,
		UserID:    uuid.New(),
		RevokedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	require.NoError(t, registry.CleanupExpired(ctx))

	entry, err := store.QueryRevocation(ctx, liveToken)
	require.NoError(t, err)
	assert.NotNil(t, entry, "entries are never deleted before their expiry")

	entry, err = store.QueryRevocation(ctx, expiredToken)
	require.NoError(t, err)
	assert.Nil(t, entry)
}
