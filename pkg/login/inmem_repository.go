package login

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryCredentialRepository implements CredentialRepository with
// mutex-guarded maps. Meant for tests and local development.
type InMemoryCredentialRepository struct {
	mu        sync.RWMutex
	employees map[uuid.UUID]*Employee
}

func NewInMemoryCredentialRepository() *InMemoryCredentialRepository {
	return &InMemoryCredentialRepository{
		employees: make(map[uuid.UUID]*Employee),
	}
}

// AddEmployee seeds a credential record. A zero MaxLoginAttempts gets the
// default threshold.
func (r *InMemoryCredentialRepository) AddEmployee(e Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.MaxLoginAttempts == 0 {
		e.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	r.employees[e.ID] = &e
}

// FindByIdentifier implements CredentialRepository.FindByIdentifier
func (r *InMemoryCredentialRepository) FindByIdentifier(ctx context.Context, identifier string) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if e.CPF == identifier || strings.EqualFold(e.Username, identifier) {
			copy := *e
			return &copy, nil
		}
	}
	return nil, nil
}

// GetByID implements CredentialRepository.GetByID
func (r *InMemoryCredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}
	copy := *e
	return &copy, nil
}

// IncrementFailedAttempts implements CredentialRepository.IncrementFailedAttempts
func (r *InMemoryCredentialRepository) IncrementFailedAttempts(ctx context.Context, id uuid.UUID) (int32, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return 0, false, fmt.Errorf("employee not found: %s", id)
	}

	e.LoginAttempts++
	if e.LoginAttempts >= e.MaxLoginAttempts {
		e.Locked = true
	}
	return e.LoginAttempts, e.Locked, nil
}

// ResetAttempts implements CredentialRepository.ResetAttempts
func (r *InMemoryCredentialRepository) ResetAttempts(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return fmt.Errorf("employee not found: %s", id)
	}
	e.LoginAttempts = 0
	return nil
}

// Lock implements CredentialRepository.Lock
func (r *InMemoryCredentialRepository) Lock(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return fmt.Errorf("employee not found: %s", id)
	}
	e.Locked = true
	return nil
}
