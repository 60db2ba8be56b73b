package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCredentialRepository implements CredentialRepository over the
// employees table
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

const employeeColumns = `
	id, name, cpf, username, email, password_hash, permission,
	login_attempts, max_login_attempts, is_locked, active, created_at
`

func (r *PostgresCredentialRepository) scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.Name, &e.CPF, &e.Username, &e.Email, &e.PasswordHash,
		&e.Permission, &e.LoginAttempts, &e.MaxLoginAttempts, &e.Locked,
		&e.Active, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}
	return &e, nil
}

// FindByIdentifier implements CredentialRepository.FindByIdentifier
func (r *PostgresCredentialRepository) FindByIdentifier(ctx context.Context, identifier string) (*Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE cpf = $1 OR username = $1
	`
	return r.scanEmployee(r.pool.QueryRow(ctx, query, identifier))
}

// GetByID implements CredentialRepository.GetByID
func (r *PostgresCredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1
	`
	return r.scanEmployee(r.pool.QueryRow(ctx, query, id))
}

// IncrementFailedAttempts implements CredentialRepository.IncrementFailedAttempts.
// The increment and the lock decision happen in one UPDATE so concurrent
// failed logins cannot lose a count or race past the threshold.
func (r *PostgresCredentialRepository) IncrementFailedAttempts(ctx context.Context, id uuid.UUID) (int32, bool, error) {
	query := `
		UPDATE employees
		SET login_attempts = login_attempts + 1,
		    is_locked = is_locked OR (login_attempts + 1 >= max_login_attempts)
		WHERE id = $1
		RETURNING login_attempts, is_locked
	`
	var attempts int32
	var locked bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&attempts, &locked)
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return attempts, locked, nil
}

// ResetAttempts implements CredentialRepository.ResetAttempts
func (r *PostgresCredentialRepository) ResetAttempts(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET login_attempts = 0 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// Lock implements CredentialRepository.Lock
func (r *PostgresCredentialRepository) Lock(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET is_locked = true WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}
