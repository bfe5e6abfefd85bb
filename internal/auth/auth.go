// Package auth resolves the caller of a request from its bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

type ctxKey int8

const (
	ctxKeyUser ctxKey = iota
	ctxKeyToken
)

const (
	MsgNotAuthenticated = "Authentication credentials were not provided."
	MsgInvalidToken     = "Invalid token."
	MsgInvalidHeader    = "Invalid token header."
)

// Store looks a user up by token key.
type Store interface {
	UserByToken(ctx context.Context, key string) (*model.User, error)
}

// Cache keeps recently resolved tokens. Implementations must tolerate
// being unavailable: a miss only costs a store lookup.
type Cache interface {
	Get(ctx context.Context, key string) (*model.User, bool)
	Set(ctx context.Context, key string, u *model.User)
	Delete(ctx context.Context, key string)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*model.User, bool) { return nil, false }
func (nopCache) Set(context.Context, string, *model.User)        {}
func (nopCache) Delete(context.Context, string)                  {}

type Authenticator struct {
	store Store
	cache Cache
	log   *zap.SugaredLogger
}

// NewAuthenticator builds an Authenticator. cache may be nil.
func NewAuthenticator(s Store, cache Cache, log *zap.SugaredLogger) *Authenticator {
	if cache == nil {
		cache = nopCache{}
	}

	return &Authenticator{store: s, cache: cache, log: log}
}

// tokenFromHeader extracts the key from "Token <key>" or "Bearer <key>".
// ok is false when the header uses neither scheme.
func tokenFromHeader(h string) (key string, ok bool, err error) {
	parts := strings.Fields(h)
	if len(parts) == 0 {
		return "", false, nil
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return "", false, nil
	}
	if len(parts) != 2 {
		return "", true, errors.New(MsgInvalidHeader)
	}

	return parts[1], true, nil
}

// Middleware attaches the caller to the request context. Requests without
// credentials pass through anonymously; bad credentials are rejected.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok, err := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)

			return
		}
		if err != nil {
			a.render(w, r, errresponse.ErrUnauthorized(err.Error()))

			return
		}

		u, err := a.resolve(r.Context(), key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			a.render(w, r, errresponse.ErrUnauthorized(MsgInvalidToken))

			return
		case err != nil:
			a.log.Errorw("resolve token", "error", err)
			a.render(w, r, errresponse.ErrInternal(err))

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, u)
		ctx = context.WithValue(ctx, ctxKeyToken, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) resolve(ctx context.Context, key string) (*model.User, error) {
	if u, ok := a.cache.Get(ctx, key); ok {
		return u, nil
	}

	u, err := a.store.UserByToken(ctx, key)
	if err != nil {
		return nil, err
	}
	a.cache.Set(ctx, key, u)

	return u, nil
}

// Forget drops a revoked token from the cache.
func (a *Authenticator) Forget(ctx context.Context, key string) {
	a.cache.Delete(ctx, key)
}

func (a *Authenticator) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		a.log.Errorw(err.Error())
		_ = render.Render(w, r, errresponse.ErrRender(err))
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			_ = render.Render(w, r, errresponse.ErrUnauthorized(MsgNotAuthenticated))

			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(*model.User)

	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying u as the caller.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

const MsgNotStaff = "You do not have permission to perform this action."

// AdminOnly lets staff users through and answers everyone else with 403.
// It expects RequireUser to have run.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || !u.IsStaff {
			_ = render.Render(w, r, errresponse.ErrForbidden(MsgNotStaff))

			return
		}
		next.ServeHTTP(w, r)
	})
}
