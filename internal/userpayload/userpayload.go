package userpayload

import (
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/validate"
)

//--
// Request and Response payloads for the account endpoints.
//--

// RegisterRequest is the body of POST /register/.
type RegisterRequest struct {
	Username             *string `json:"username" validate:"omitnil,notblank,max=150"`
	Email                *string `json:"email" validate:"omitnil,notblank,email,max=254"`
	Password             *string `json:"password" validate:"omitnil,notblank"`
	PasswordConfirmation *string `json:"password_confirmation" validate:"omitnil,notblank"`
}

// Bind on RegisterRequest runs after the unmarshalling is complete.
func (p *RegisterRequest) Bind(r *http.Request) error {
	errs := validate.Struct(p)
	errs.Require("username", p.Username != nil)
	errs.Require("email", p.Email != nil)
	errs.Require("password", p.Password != nil)
	errs.Require("password_confirmation", p.PasswordConfirmation != nil)

	return errs.Err()
}

// LoginRequest is the body of POST /login/.
type LoginRequest struct {
	Username *string `json:"username" validate:"omitnil,notblank"`
	Password *string `json:"password" validate:"omitnil,notblank"`
}

func (p *LoginRequest) Bind(r *http.Request) error {
	errs := validate.Struct(p)
	errs.Require("username", p.Username != nil)
	errs.Require("password", p.Password != nil)

	return errs.Err()
}

// LogoutRequest is the optional body of POST /logout/. The flag is
// accepted but not required to be true.
type LogoutRequest struct {
	ConfirmLogout bool `json:"confirm_logout"`
}

func (p *LogoutRequest) Bind(r *http.Request) error {
	return nil
}

// TokenResponse answers a successful registration or login.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (t *TokenResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func (m *MessageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
