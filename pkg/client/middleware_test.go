package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipe-hr/sipe-auth/pkg/login"
	"github.com/sipe-hr/sipe-auth/pkg/revocation"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

func newTestAuthService(t *testing.T, options ...token.Option) (*login.AuthService, *login.Employee) {
	t.Helper()

	hasher := login.NewBcryptHasher(4)
	passwordHash, err := hasher.Hash("CorrectPass1!")
	require.NoError(t, err)

	repo := login.NewInMemoryCredentialRepository()
	employee := login.Employee{
		ID:           uuid.New(),
		Name:         "Maria Souza",
		CPF:          "12345678900",
		Username:     "maria.souza",
		PasswordHash: passwordHash,
		Permission:   token.PermissionNormal,
		Active:       true,
	}
	repo.AddEmployee(employee)

	registry := revocation.NewRegistry(revocation.NewInMemoryStore(), revocation.NewInMemoryCache())
	generator := &token.JwtTokenGenerator{Secret: "test-secret", Issuer: token.DefaultIssuer}
	tokens := token.NewService(generator, options...)

	service := login.NewAuthService(repo, hasher, tokens, registry, login.NewAttemptGovernor(repo, nil))
	return service, &employee
}

func echoIdentity(t *testing.T) (http.Handler, *AuthContext) {
	t.Helper()
	captured := &AuthContext{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetAuthContext(r)
		w.WriteHeader(http.StatusOK)
	})
	return handler, captured
}

func TestVerifierWithBearerToken(t *testing.T) {
	service, employee := newTestAuthService(t)
	middleware := NewMiddleware(service, nil)

	result, err := service.Login(context.Background(), "12345678900", "CorrectPass1!")
	require.NoError(t, err)

	handler, captured := echoIdentity(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken.Value)
	rec := httptest.NewRecorder()

	middleware.Verifier(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.IsAuthenticated)
	assert.Equal(t, employee.ID, captured.ID)
	assert.Equal(t, "Maria Souza", captured.Name)
}

func TestVerifierWithCookieToken(t *testing.T) {
	service, employee := newTestAuthService(t)
	middleware := NewMiddleware(service, nil)

	result, err := service.Login(context.Background(), "12345678900", "CorrectPass1!")
	require.NoError(t, err)

	handler, captured := echoIdentity(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.AccessTokenName, Value: result.AccessToken.Value})
	rec := httptest.NewRecorder()

	middleware.Verifier(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.IsAuthenticated)
	assert.Equal(t, employee.ID, captured.ID)
}

func TestVerifierWithoutToken(t *testing.T) {
	service, _ := newTestAuthService(t)
	middleware := NewMiddleware(service, nil)

	handler, captured := echoIdentity(t)
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()

	middleware.Verifier(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, captured.IsAuthenticated)
}

func TestVerifierSilentRefresh(t *testing.T) {
	// An already expired access token plus a live refresh cookie
	service, employee := newTestAuthService(t, token.WithAccessTokenExpiry(-time.Minute))
	cookies := token.NewCookieSetter(true, false)
	middleware := NewMiddleware(service, cookies)

	result, err := service.Login(context.Background(), "12345678900", "CorrectPass1!")
	require.NoError(t, err)

	handler, captured := echoIdentity(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.AccessTokenName, Value: result.AccessToken.Value})
	req.AddCookie(&http.Cookie{Name: token.RefreshTokenName, Value: result.RefreshToken.Value})
	rec := httptest.NewRecorder()

	middleware.Verifier(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.IsAuthenticated)
	assert.Equal(t, employee.ID, captured.ID)

	// A fresh access cookie was set on the response
	var refreshed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == token.AccessTokenName {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed)
	assert.NotEqual(t, result.AccessToken.Value, refreshed.Value)
}

func TestVerifierSilentRefreshRejectedAfterLogout(t *testing.T) {
	service, _ := newTestAuthService(t, token.WithAccessTokenExpiry(-time.Minute))
	middleware := NewMiddleware(service, nil)

	result, err := service.Login(context.Background(), "12345678900", "CorrectPass1!")
	require.NoError(t, err)
	require.NoError(t, service.Logout(context.Background(), result.RefreshToken.Value))

	handler, captured := echoIdentity(t)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: token.AccessTokenName, Value: result.AccessToken.Value})
	req.AddCookie(&http.Cookie{Name: token.RefreshTokenName, Value: result.RefreshToken.Value})
	rec := httptest.NewRecorder()

	middleware.Verifier(handler).ServeHTTP(rec, req)

	assert.False(t, captured.IsAuthenticated)
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req = req.WithContext(WithAuthContext(req.Context(), AuthContext{
			ID:              uuid.New(),
			IsAuthenticated: true,
		}))
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RequirePermission(token.PermissionRH, token.PermissionAdmin)

	authed := func(p token.Permission) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/rh", nil)
		return req.WithContext(WithAuthContext(req.Context(), AuthContext{
			ID:              uuid.New(),
			Permission:      p,
			IsAuthenticated: true,
		}))
	}

	t.Run("Unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rh", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InsufficientPermission", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, authed(token.PermissionNormal))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate(next).ServeHTTP(rec, authed(token.PermissionAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
