package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore implements the Store interface with in-process maps.
// Used in tests and single-node setups without PostgreSQL.
type InMemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]Session // (userID|token) -> session
	revocations map[string]Entry   // token -> entry
}

// NewInMemoryStore creates a new in-memory revocation store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions:    make(map[string]Session),
		revocations: make(map[string]Entry),
	}
}

func sessionKey(userID uuid.UUID, tokenStr string) string {
	return userID.String() + "|" + tokenStr
}

// CreateSession records a live refresh-token session
func (s *InMemoryStore) CreateSession(ctx context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.CreatedAt = time.Now().UTC()
	s.sessions[sessionKey(session.UserID, session.Token)] = session
	return nil
}

// DeleteSession removes a live session for (userID, token)
func (s *InMemoryStore) DeleteSession(ctx context.Context, userID uuid.UUID, tokenStr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey(userID, tokenStr))
	return nil
}

// Revoke deletes the live session and records the revocation entry.
// Re-revoking a token keeps the original entry.
func (s *InMemoryStore) Revoke(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey(entry.UserID, entry.Token))
	if _, exists := s.revocations[entry.Token]; !exists {
		s.revocations[entry.Token] = entry
	}
	return nil
}

// QueryRevocation looks up a revocation entry by token
func (s *InMemoryStore) QueryRevocation(ctx context.Context, tokenStr string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.revocations[tokenStr]
	if !exists {
		return nil, nil
	}
	return &entry, nil
}

// CleanupExpired deletes revocation entries and sessions past their expiry
func (s *InMemoryStore) CleanupExpired(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tokenStr, entry := range s.revocations {
		if entry.ExpiresAt.Before(now) {
			delete(s.revocations, tokenStr)
		}
	}
	for key, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, key)
		}
	}
	return nil
}

// HasSession reports whether a live session exists for (userID, token).
// Test helper.
func (s *InMemoryStore) HasSession(userID uuid.UUID, tokenStr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.sessions[sessionKey(userID, tokenStr)]
	return exists
}
