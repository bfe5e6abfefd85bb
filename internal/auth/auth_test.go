package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

func init() {
	Cost = bcrypt.MinCost
}

type mapCache struct {
	users map[string]*model.User
}

func (c *mapCache) Get(_ context.Context, key string) (*model.User, bool) {
	u, ok := c.users[key]

	return u, ok
}

func (c *mapCache) Set(_ context.Context, key string, u *model.User) { c.users[key] = u }
func (c *mapCache) Delete(_ context.Context, key string)            { delete(c.users, key) }

func setup(t *testing.T) (*store.Memory, *model.User, string) {
	t.Helper()

	ctx := context.Background()
	s := store.NewMemory()
	u := &model.User{Username: "peter"}
	require.NoError(t, s.CreateUser(ctx, u))
	tok, err := s.GetOrCreateToken(ctx, u.ID, NewKey())
	require.NoError(t, err)

	return s, u, tok.Key
}

func whoami(w http.ResponseWriter, r *http.Request) {
	name := "anonymous"
	if u, ok := UserFromContext(r.Context()); ok {
		name = u.Username
	}
	_, _ = w.Write([]byte(name))
}

func TestMiddleware(t *testing.T) {
	s, _, key := setup(t)
	a := NewAuthenticator(s, nil, zap.NewNop().Sugar())
	h := a.Middleware(http.HandlerFunc(whoami))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"token scheme", "Token " + key, http.StatusOK, "peter"},
		{"bearer scheme", "Bearer " + key, http.StatusOK, "peter"},
		{"scheme is case insensitive", "bearer " + key, http.StatusOK, "peter"},
		{"other schemes are ignored", "Basic dXNlcjpwYXNz", http.StatusOK, "anonymous"},
		{"unknown token", "Token deadbeef", http.StatusUnauthorized, ""},
		{"missing key", "Token", http.StatusUnauthorized, ""},
		{"extra parts", "Token a b", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestMiddlewareUsesCache(t *testing.T) {
	s, u, key := setup(t)
	cache := &mapCache{users: map[string]*model.User{}}
	a := NewAuthenticator(s, cache, zap.NewNop().Sugar())
	h := a.Middleware(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+key)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Contains(t, cache.users, key)
	assert.Equal(t, u.ID, cache.users[key].ID)

	a.Forget(context.Background(), key)
	assert.NotContains(t, cache.users, key)
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(whoami))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, MsgNotAuthenticated, body["error"])

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &model.User{ID: 1, Username: "julia"}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "julia", w.Body.String())
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	BurnPassword("anything")
}

func TestNewKey(t *testing.T) {
	a, b := NewKey(), NewKey()
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}

func TestAdminOnly(t *testing.T) {
	h := AdminOnly(http.HandlerFunc(whoami))

	for _, tt := range []struct {
		user       *model.User
		wantStatus int
	}{
		{nil, http.StatusForbidden},
		{&model.User{ID: 1, Username: "julia"}, http.StatusForbidden},
		{&model.User{ID: 2, Username: "root", IsStaff: true}, http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
		if tt.user != nil {
			req = req.WithContext(WithUser(req.Context(), tt.user))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, tt.wantStatus, w.Code)
	}
}
