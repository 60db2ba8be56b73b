package revocation

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a durable record of an invalidated token. Entries are never
// deleted before their ExpiresAt so a revoked token cannot be replayed
// inside its own validity window.
type Entry struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is a live refresh-token record, stored at login so logout can
// find and invalidate it
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
