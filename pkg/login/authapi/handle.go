package authapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/sipe-hr/sipe-auth/pkg/client"
	"github.com/sipe-hr/sipe-auth/pkg/login"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

// Handle exposes the authentication flows over HTTP
type Handle struct {
	authService *login.AuthService
	cookies     token.CookieSetter
}

type Option func(*Handle)

func NewHandle(opts ...Option) Handle {
	h := Handle{
		cookies: token.NewCookieSetter(true, false),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func WithAuthService(as *login.AuthService) Option {
	return func(h *Handle) {
		h.authService = as
	}
}

func WithCookieSetter(cs token.CookieSetter) Option {
	return func(h *Handle) {
		h.cookies = cs
	}
}

// Routes mounts the auth endpoints. GET /me expects the verifier middleware
// to have run already.
func (h Handle) Routes(r chi.Router) {
	r.Post("/login", h.PostLogin)
	r.Post("/logout", h.PostLogout)
	r.Post("/refresh", h.PostRefresh)
	r.Group(func(r chi.Router) {
		r.Use(client.RequireAuth)
		r.Get("/me", h.GetMe)
	})
}

// Login a user
// (POST /auth/login)
func (h Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	data := LoginRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		renderBadRequest(w, r, "Unable to parse request body")
		return
	}
	if data.Identifier() == "" || data.Password == "" {
		renderBadRequest(w, r, "cpf or username and password are required")
		return
	}

	slog.Info("Login request", "identifier", data.Identifier())

	result, err := h.authService.Login(r.Context(), data.Identifier(), data.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token.SetTokenCookies(h.cookies, w, result.AccessToken, result.RefreshToken)

	render.JSON(w, r, LoginResponse{
		Status:       StatusSuccess,
		Message:      "Login successful",
		AccessToken:  result.AccessToken.Value,
		RefreshToken: result.RefreshToken.Value,
		User:         mapUser(result.Employee),
	})
}

// Logout a user by revoking the refresh token
// (POST /auth/logout)
func (h Handle) PostLogout(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFrom(r)
	if refreshToken == "" {
		renderBadRequest(w, r, "no refresh token provided")
		return
	}

	if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
		renderError(w, r, err)
		return
	}

	token.ClearTokenCookies(h.cookies, w)

	render.JSON(w, r, StatusResponse{Status: StatusSuccess, Message: "Logged out"})
}

// Exchange a refresh token for a new access token
// (POST /auth/refresh)
func (h Handle) PostRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFrom(r)
	if refreshToken == "" {
		renderBadRequest(w, r, "no refresh token provided")
		return
	}

	accessToken, _, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := h.cookies.SetCookie(w, token.AccessTokenName, accessToken.Value, accessToken.ExpiresAt); err != nil {
		slog.Warn("Failed to set access token cookie", "err", err)
	}

	render.JSON(w, r, RefreshResponse{
		Status:      StatusSuccess,
		AccessToken: accessToken.Value,
	})
}

// Return the authenticated identity
// (GET /auth/me)
func (h Handle) GetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := client.GetAuthContext(r)

	render.JSON(w, r, UserResponse{
		ID:         authCtx.ID.String(),
		Name:       authCtx.Name,
		CPF:        authCtx.CPF,
		Permission: authCtx.Permission,
	})
}

// refreshTokenFrom reads the refresh token from the body, falling back to
// the cookie for browser clients
func (h Handle) refreshTokenFrom(r *http.Request) string {
	data := RefreshRequest{}
	if err := render.DecodeJSON(r.Body, &data); err == nil && data.RefreshToken != "" {
		return data.RefreshToken
	}
	if cookie, err := r.Cookie(token.RefreshTokenName); err == nil {
		return cookie.Value
	}
	return ""
}
