package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// AuthContext is the request-scoped identity attached by the middleware
type AuthContext struct {
	ID              uuid.UUID
	Name            string
	CPF             string
	Permission      token.Permission
	IsAuthenticated bool
}

func (a AuthContext) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("userId", a.ID.String()),
		slog.String("permission", string(a.Permission)),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "auth context value " + k.name
}

var authContextKey = &contextKey{"AuthContext"}

// WithAuthContext returns a context carrying the given identity
func WithAuthContext(ctx context.Context, authCtx AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// GetAuthContext returns the identity attached to the request, or a zero
// AuthContext when the request is unauthenticated.
func GetAuthContext(r *http.Request) AuthContext {
	authCtx, ok := r.Context().Value(authContextKey).(AuthContext)
	if !ok {
		return AuthContext{}
	}
	return authCtx
}

func authContextFromClaims(claims *token.Claims) AuthContext {
	return AuthContext{
		ID:              claims.Identity.ID,
		Name:            claims.Identity.Name,
		CPF:             claims.Identity.CPF,
		Permission:      claims.Identity.Permission,
		IsAuthenticated: true,
	}
}
