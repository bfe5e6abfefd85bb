// Package user serves registration, login and logout.
package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
	"github.com/SergeyParamoshkin/blog/internal/userpayload"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

const (
	MsgRegistered       = "Account created successfully. Please sign in."
	MsgPasswordMismatch = "Password confirmation does not match."
	MsgUsernameTaken    = "Username is already taken."
	MsgSignedIn         = "Sign in successful."
	MsgBadCredentials   = "Invalid login credentials."
	MsgSignedOut        = "Signed out successfully."
	MsgNoSession        = "No active session found."
)

type Store interface {
	UserExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetOrCreateToken(ctx context.Context, userID uint, key string) (*model.AuthToken, error)
	DeleteToken(ctx context.Context, userID uint) (string, error)
}

// Forgetter drops revoked tokens from the token cache.
type Forgetter interface {
	Forget(ctx context.Context, key string)
}

type API struct {
	store  Store
	tokens Forgetter
	log    *zap.SugaredLogger
}

func NewAPI(s Store, tokens Forgetter, log *zap.SugaredLogger) *API {
	return &API{store: s, tokens: tokens, log: log}
}

func (a *API) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		a.log.Errorw(err.Error())
		_ = render.Render(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	a.log.Errorw(msg, "error", err)
	a.render(w, r, errresponse.ErrInternal(err))
}

// Register creates an account and issues its token.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.RegisterRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if *data.Password != *data.PasswordConfirmation {
		a.render(w, r, errresponse.ErrBadRequest(MsgPasswordMismatch))

		return
	}

	username := strings.TrimSpace(*data.Username)
	taken, err := a.store.UserExists(r.Context(), username)
	if err != nil {
		a.internal(w, r, "check username", err)

		return
	}
	if taken {
		a.render(w, r, errresponse.ErrBadRequest(MsgUsernameTaken))

		return
	}

	hash, err := auth.HashPassword(*data.Password)
	if err != nil {
		a.internal(w, r, "hash password", err)

		return
	}

	u := &model.User{Username: username, Email: strings.TrimSpace(*data.Email), PasswordHash: hash}
	if err := a.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			a.render(w, r, errresponse.ErrBadRequest(MsgUsernameTaken))

			return
		}
		a.internal(w, r, "create user", err)

		return
	}

	tok, err := a.store.GetOrCreateToken(r.Context(), u.ID, auth.NewKey())
	if err != nil {
		a.internal(w, r, "issue token", err)

		return
	}

	a.log.Infow("user registered", "username", u.Username)
	render.Status(r, http.StatusCreated)
	a.render(w, r, &userpayload.TokenResponse{Message: MsgRegistered, Token: tok.Key})
}

// Login checks the credentials and returns the token of the user, creating
// one if needed.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.LoginRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	u, err := a.store.GetUserByUsername(r.Context(), strings.TrimSpace(*data.Username))
	switch {
	case errors.Is(err, store.ErrNotFound):
		auth.BurnPassword(*data.Password)
		a.render(w, r, errresponse.ErrUnauthorized(MsgBadCredentials))

		return
	case err != nil:
		a.internal(w, r, "find user", err)

		return
	}

	if !auth.CheckPassword(u.PasswordHash, *data.Password) {
		a.render(w, r, errresponse.ErrUnauthorized(MsgBadCredentials))

		return
	}

	tok, err := a.store.GetOrCreateToken(r.Context(), u.ID, auth.NewKey())
	if err != nil {
		a.internal(w, r, "issue token", err)

		return
	}

	a.render(w, r, &userpayload.TokenResponse{Message: MsgSignedIn, Token: tok.Key})
}

// Logout revokes the token of the caller.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	data := &userpayload.LogoutRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	key, err := a.store.DeleteToken(r.Context(), caller.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		a.render(w, r, errresponse.ErrBadRequest(MsgNoSession))

		return
	case err != nil:
		a.internal(w, r, "delete token", err)

		return
	}
	a.tokens.Forget(r.Context(), key)

	a.log.Infow("user signed out", "username", caller.Username)
	a.render(w, r, &userpayload.MessageResponse{Message: MsgSignedOut})
}
