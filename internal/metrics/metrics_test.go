package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareExportsRequests(t *testing.T) {
	m, err := New("blog-test")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/articles/{articleSlug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		m.Ping(r.Context())
		_, _ = w.Write([]byte("pong"))
	})

	for _, path := range []string{"/ping", "/ping", "/articles/a", "/articles/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	m.Ping(context.Background())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "http_server_request_count")
	assert.Contains(t, body, "http_server_duration_ms")
	assert.Contains(t, body, "http_client_completed_count")
	assert.Contains(t, body, `route="/ping"`)
	assert.Contains(t, body, `route="/articles/{articleSlug}"`)
	assert.Contains(t, body, `status="404"`)
	assert.NotContains(t, body, `route="/articles/a"`)
}
