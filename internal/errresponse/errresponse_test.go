package errresponse

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/blog/internal/validate"
)

func renderTo(t *testing.T, v render.Renderer) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, render.Render(w, r, v))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w, body
}

func TestErrInvalidRequestWithFields(t *testing.T) {
	w, body := renderTo(t, ErrInvalidRequest(validate.Errors{"title": validate.MsgRequired}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]interface{}{"title": validate.MsgRequired}, body["fields"])
	assert.NotContains(t, body, "error")
}

func TestErrInvalidRequestPlain(t *testing.T) {
	w, body := renderTo(t, ErrInvalidRequest(errors.New("boom")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "boom", body["error"])
}

func TestErrUnauthorizedSetsChallenge(t *testing.T) {
	w, body := renderTo(t, ErrUnauthorized("Invalid token."))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Invalid token.", body["error"])
}

func TestErrInternalHidesCause(t *testing.T) {
	w, body := renderTo(t, ErrInternal(errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Equal(t, "Internal server error.", body["status"])
}

func TestErrRender(t *testing.T) {
	w, body := renderTo(t, ErrRender(errors.New("cannot encode article")))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Error rendering response.", body["status"])
	assert.Equal(t, "cannot encode article", body["error"])
}
