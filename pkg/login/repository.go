package login

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// DefaultMaxLoginAttempts is the lockout threshold applied when a record
// carries no explicit maximum
const DefaultMaxLoginAttempts int32 = 5

// Employee is the credential record the authentication flows operate on
type Employee struct {
	ID               uuid.UUID
	Name             string
	CPF              string
	Username         string
	Email            string
	PasswordHash     string
	Permission       token.Permission
	LoginAttempts    int32
	MaxLoginAttempts int32
	Locked           bool
	Active           bool
	CreatedAt        time.Time
}

// Identity maps the credential record to the claim identity carried in tokens
func (e Employee) Identity() token.Identity {
	return token.Identity{
		ID:         e.ID,
		Name:       e.Name,
		CPF:        e.CPF,
		Permission: e.Permission,
	}
}

// CredentialRepository is the storage contract for employee credentials and
// the per-account failure counters.
type CredentialRepository interface {
	// FindByIdentifier looks an employee up by CPF or username.
	// Returns (nil, nil) when no record matches.
	FindByIdentifier(ctx context.Context, identifier string) (*Employee, error)

	// GetByID fetches an employee by primary key. Returns (nil, nil) when
	// no record matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)

	// IncrementFailedAttempts bumps the failure counter and sets the lock
	// flag when the post-increment count reaches the account's maximum,
	// all in one atomic operation. It returns the post-increment count and
	// the resulting lock state, so concurrent failures can never lose an
	// update or miss the lock transition.
	IncrementFailedAttempts(ctx context.Context, id uuid.UUID) (attempts int32, locked bool, err error)

	// ResetAttempts clears the failure counter after a successful login
	ResetAttempts(ctx context.Context, id uuid.UUID) error

	// Lock marks the account locked regardless of the counter
	Lock(ctx context.Context, id uuid.UUID) error
}
