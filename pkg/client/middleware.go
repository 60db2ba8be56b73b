package client

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
	"github.com/sipe-hr/sipe-auth/pkg/login"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// Middleware authenticates requests against the auth service. An expired
// access token is refreshed transparently when the refresh cookie is still
// valid, so browser sessions survive the short access-token lifetime.
type Middleware struct {
	auth    *login.AuthService
	cookies token.CookieSetter
}

func NewMiddleware(auth *login.AuthService, cookies token.CookieSetter) *Middleware {
	return &Middleware{auth: auth, cookies: cookies}
}

// tokenFromRequest prefers the Authorization header over the cookie
func tokenFromRequest(r *http.Request) string {
	if tokenStr := jwtauth.TokenFromHeader(r); tokenStr != "" {
		return tokenStr
	}
	if cookie, err := r.Cookie(token.AccessTokenName); err == nil {
		return cookie.Value
	}
	return ""
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(token.RefreshTokenName); err == nil {
		return cookie.Value
	}
	return ""
}

// Verifier validates the access token on every request and attaches the
// AuthContext. Requests without a usable token pass through unauthenticated;
// RequireAuth decides whether that is acceptable for a given route.
func (m *Middleware) Verifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.auth.VerifyAccessToken(r.Context(), tokenStr)
		if err == nil {
			ctx := WithAuthContext(r.Context(), authContextFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if errs.IsCode(err, errs.CodeTokenExpired) {
			if claims := m.silentRefresh(w, r); claims != nil {
				ctx := WithAuthContext(r.Context(), authContextFromClaims(claims))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		slog.Debug("Access token rejected",
			"err", err, "token", token.Mask(tokenStr))
		next.ServeHTTP(w, r)
	})
}

// silentRefresh exchanges the refresh cookie for a new access token and
// re-sets the access cookie. Returns nil when no refresh is possible.
func (m *Middleware) silentRefresh(w http.ResponseWriter, r *http.Request) *token.Claims {
	refreshStr := refreshTokenFromRequest(r)
	if refreshStr == "" {
		return nil
	}

	accessToken, claims, err := m.auth.Refresh(r.Context(), refreshStr)
	if err != nil {
		slog.Debug("Silent refresh failed",
			"err", err, "token", token.Mask(refreshStr))
		return nil
	}

	if m.cookies != nil {
		if err := m.cookies.SetCookie(w, token.AccessTokenName, accessToken.Value, accessToken.ExpiresAt); err != nil {
			slog.Warn("Failed to set refreshed access cookie", "err", err)
		}
	}

	slog.Info("Access token silently refreshed", "userId", claims.Identity.ID)
	return claims
}

// RequireAuth rejects unauthenticated requests with 401.
// Must be used after Verifier.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := GetAuthContext(r)

		if !authCtx.IsAuthenticated {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission returns a middleware that requires one of the given
// permissions. Returns 401 if not authenticated, 403 if authenticated but
// not permitted. Must be used after Verifier.
func RequirePermission(permissions ...token.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)

			if !authCtx.IsAuthenticated {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, p := range permissions {
				if authCtx.Permission == p {
					next.ServeHTTP(w, r)
					return
				}
			}

			slog.Warn("User lacks required permission",
				"userId", authCtx.ID,
				"permission", authCtx.Permission,
				"required", permissions)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}
