package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

type fixture struct {
	t     *testing.T
	h     http.Handler
	s     *store.Memory
	topic *model.Topic
	staff string
	plain string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	s := store.NewMemory()
	log := zap.NewNop().Sugar()

	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(auth.NewAuthenticator(s, nil, log).Middleware)
	r.Mount("/admin", NewAPI(s, article.NewAPI(s, log), log).Router())

	f := &fixture{t: t, h: r, s: s, topic: &model.Topic{Name: "Go"}}
	require.NoError(t, s.CreateTopic(ctx, f.topic))
	f.staff = f.user("root", true)
	f.plain = f.user("peter", false)

	return f
}

func (f *fixture) user(name string, staff bool) string {
	ctx := context.Background()
	u := &model.User{Username: name}
	require.NoError(f.t, f.s.CreateUser(ctx, u))
	if staff {
		require.NoError(f.t, f.s.SetStaff(ctx, name, true))
	}
	tok, err := f.s.GetOrCreateToken(ctx, u.ID, auth.NewKey())
	require.NoError(f.t, err)

	return tok.Key
}

func (f *fixture) do(method, path, token, body string) (int, map[string]interface{}) {
	f.t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}

	return w.Code, out
}

func TestAccess(t *testing.T) {
	f := setup(t)

	code, _ := f.do(http.MethodGet, "/admin/articles/", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = f.do(http.MethodGet, "/admin/articles/", f.plain, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(http.MethodPost, "/admin/topics/", f.plain, `{"name":"Rust"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(http.MethodGet, "/admin/articles/", f.staff, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestListArticlesIncludesDrafts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	author, err := f.s.GetUserByUsername(ctx, "peter")
	require.NoError(t, err)
	for _, a := range []*model.Article{
		{Title: "Live", Slug: "live", IsPublished: true},
		{Title: "Draft", Slug: "draft"},
	} {
		a.AuthorID, a.TopicID = author.ID, f.topic.ID
		require.NoError(t, f.s.CreateArticle(ctx, a))
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?is_published=false", 1},
		{"?is_published=true", 1},
		{fmt.Sprintf("?author=%d", author.ID), 2},
		{"?search=draft", 1},
	}
	for _, tt := range tests {
		code, out := f.do(http.MethodGet, "/admin/articles/"+tt.query, f.staff, "")
		require.Equal(t, http.StatusOK, code, tt.query)
		assert.EqualValues(t, tt.want, out["count"], tt.query)
	}

	code, out := f.do(http.MethodGet, "/admin/articles/?is_published=maybe&topic=x", f.staff, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["fields"], "is_published")
	assert.Contains(t, out["fields"], "topic")
}

func TestCreateTopic(t *testing.T) {
	f := setup(t)

	code, out := f.do(http.MethodPost, "/admin/topics/", f.staff, `{"name":" Rust "}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Rust", out["name"])

	code, out = f.do(http.MethodPost, "/admin/topics/", f.staff, `{"name":"Go"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, MsgTopicExists, out["fields"].(map[string]interface{})["name"])

	code, out = f.do(http.MethodPost, "/admin/topics/", f.staff, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["fields"], "name")

	topics, err := f.s.ListTopics(context.Background())
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}
