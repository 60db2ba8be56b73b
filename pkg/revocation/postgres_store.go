package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL revocation store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
	}
}

// CreateSession records a live refresh-token session
func (s *PostgresStore) CreateSession(ctx context.Context, session Session) error {
	query := `
		INSERT INTO refresh_sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	_, err := s.pool.Exec(ctx, query, session.UserID, session.Token, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create refresh session: %w", err)
	}
	return nil
}

// DeleteSession removes a live session for (userID, token)
func (s *PostgresStore) DeleteSession(ctx context.Context, userID uuid.UUID, tokenStr string) error {
	query := `DELETE FROM refresh_sessions WHERE user_id = $1 AND token = $2`
	_, err := s.pool.Exec(ctx, query, userID, tokenStr)
	if err != nil {
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}
	return nil
}

// Revoke deletes the live session and inserts the revocation entry in a
// single transaction. ON CONFLICT DO NOTHING keeps a second revocation of
// the same token from failing.
func (s *PostgresStore) Revoke(ctx context.Context, entry Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin revocation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM refresh_sessions WHERE user_id = $1 AND token = $2`,
		entry.UserID, entry.Token)
	if err != nil {
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO revoked_tokens (token, user_id, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO NOTHING
	`, entry.Token, entry.UserID, entry.RevokedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert revocation entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit revocation transaction: %w", err)
	}
	return nil
}

// QueryRevocation looks up a revocation entry by token
func (s *PostgresStore) QueryRevocation(ctx context.Context, tokenStr string) (*Entry, error) {
	query := `
		SELECT token, user_id, revoked_at, expires_at
		FROM revoked_tokens
		WHERE token = $1
	`

	entry := &Entry{}
	err := s.pool.QueryRow(ctx, query, tokenStr).Scan(
		&entry.Token,
		&entry.UserID,
		&entry.RevokedAt,
		&entry.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query revocation: %w", err)
	}
	return entry, nil
}

// CleanupExpired deletes revocation entries and sessions past their expiry
func (s *PostgresStore) CleanupExpired(ctx context.Context, now time.Time) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < $1`, now); err != nil {
		return fmt.Errorf("failed to delete expired revocations: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_sessions WHERE expires_at < $1`, now); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
