package login

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/sipe-hr/sipe-auth/pkg/notification"
)

// AttemptGovernor tracks per-account failed logins and locks accounts that
// cross their threshold. It owns the lockout notice so the auth flow only
// reports outcomes.
type AttemptGovernor struct {
	repo     CredentialRepository
	notifier notification.Notifier
}

func NewAttemptGovernor(repo CredentialRepository, notifier notification.Notifier) *AttemptGovernor {
	if notifier == nil {
		notifier = notification.NoopNotifier{}
	}
	return &AttemptGovernor{repo: repo, notifier: notifier}
}

// RecordFailure registers a failed login. It returns whether the account is
// now locked. When this failure is the one that locks the account, a lockout
// notice is sent; delivery failure is logged and never fails the flow.
func (g *AttemptGovernor) RecordFailure(ctx context.Context, employee *Employee) (bool, error) {
	attempts, locked, err := g.repo.IncrementFailedAttempts(ctx, employee.ID)
	if err != nil {
		return false, err
	}

	slog.Info("Failed login attempt recorded",
		"userId", employee.ID, "attempts", attempts, "locked", locked)

	// Only the transition sends a notice; an already locked account being
	// hammered stays quiet.
	if locked && !employee.Locked {
		g.notifyLocked(ctx, employee, attempts)
	}
	return locked, nil
}

// RecordSuccess clears the failure counter after a successful login
func (g *AttemptGovernor) RecordSuccess(ctx context.Context, employee *Employee) error {
	return g.repo.ResetAttempts(ctx, employee.ID)
}

func (g *AttemptGovernor) notifyLocked(ctx context.Context, employee *Employee, attempts int32) {
	if employee.Email == "" {
		return
	}
	err := g.notifier.Send(ctx, notification.NoticeAccountLocked, notification.Notice{
		To: employee.Email,
		Data: map[string]string{
			"Name":     employee.Name,
			"Attempts": strconv.Itoa(int(attempts)),
		},
	})
	if err != nil {
		slog.Warn("Failed to send account locked notice",
			"userId", employee.ID, "err", err)
	}
}
