package authapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/sipe-hr/sipe-auth/pkg/errs"
	"github.com/sipe-hr/sipe-auth/pkg/login"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

const StatusSuccess = "success"

// LoginRequest is the POST /auth/login body. CPF and username are
// interchangeable identifiers; CPF wins when both are present.
type LoginRequest struct {
	CPF      string `json:"cpf,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

func (req LoginRequest) Identifier() string {
	if req.CPF != "" {
		return req.CPF
	}
	return req.Username
}

// RefreshRequest carries the refresh token when the client does not use
// cookies. Logout shares the same body shape.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UserResponse is the identity snapshot returned to clients
type UserResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	CPF        string           `json:"cpf"`
	Permission token.Permission `json:"permission"`
}

type LoginResponse struct {
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type RefreshResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"access_token"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON error body; Code carries the machine-readable
// outcome so clients can tell a lockout from a bad password.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func mapUser(employee *login.Employee) UserResponse {
	var user UserResponse
	if err := copier.Copy(&user, employee); err != nil {
		// Field-by-field fallback keeps the response usable
		user = UserResponse{
			Name:       employee.Name,
			CPF:        employee.CPF,
			Permission: employee.Permission,
		}
	}
	user.ID = employee.ID.String()
	return user
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	message := "authentication failed"
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	render.Status(r, errs.MapCodeToHTTPStatus(code))
	render.JSON(w, r, ErrorResponse{Code: code, Message: message})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Code: errs.CodeInternal, Message: message})
}
