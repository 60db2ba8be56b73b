package login

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipe-hr/sipe-auth/pkg/notification"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

func seedEmployee(t *testing.T, repo *InMemoryCredentialRepository) *Employee {
	t.Helper()
	e := Employee{
		ID:               uuid.New(),
		Name:             "Maria Souza",
		CPF:              "12345678900",
		Username:         "maria.souza",
		Email:            "maria.souza@example.com",
		PasswordHash:     "$2a$04$invalidhashforseeding0000000000000000000000000000000",
		Permission:       token.PermissionNormal,
		MaxLoginAttempts: 5,
		Active:           true,
	}
	repo.AddEmployee(e)
	stored, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	return stored
}

func TestGovernorLocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCredentialRepository()
	notifier := notification.NewMockNotifier()
	governor := NewAttemptGovernor(repo, notifier)

	employee := seedEmployee(t, repo)

	for i := 1; i <= 4; i++ {
		locked, err := governor.RecordFailure(ctx, employee)
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d must not lock", i)
	}

	locked, err := governor.RecordFailure(ctx, employee)
	require.NoError(t, err)
	assert.True(t, locked, "the fifth failure locks the account")

	stored, err := repo.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
	assert.EqualValues(t, 5, stored.LoginAttempts)
}

func TestGovernorNotifiesOnlyOnLockTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCredentialRepository()
	notifier := notification.NewMockNotifier()
	governor := NewAttemptGovernor(repo, notifier)

	employee := seedEmployee(t, repo)

	for i := 0; i < 5; i++ {
		_, err := governor.RecordFailure(ctx, employee)
		require.NoError(t, err)
	}

	sent := notifier.Sent()
	require.Len(t, sent, 1, "exactly one notice for the lock transition")
	assert.Equal(t, notification.NoticeAccountLocked, sent[0].Type)
	assert.Equal(t, employee.Email, sent[0].Notice.To)
	assert.Equal(t, "5", sent[0].Notice.Data["Attempts"])

	// Further failures against the already locked account stay quiet
	lockedEmployee, err := repo.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	_, err = governor.RecordFailure(ctx, lockedEmployee)
	require.NoError(t, err)
	assert.Len(t, notifier.Sent(), 1)
}

func TestGovernorResetOnSuccess(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryCredentialRepository()
	governor := NewAttemptGovernor(repo, nil)

	employee := seedEmployee(t, repo)

	for i := 0; i < 3; i++ {
		_, err := governor.RecordFailure(ctx, employee)
		require.NoError(t, err)
	}

	require.NoError(t, governor.RecordSuccess(ctx, employee))

	stored, err := repo.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stored.LoginAttempts)
	assert.False(t, stored.Locked)
}
