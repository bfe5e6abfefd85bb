package paginate

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateMiddleware(t *testing.T) {
	var got int
	h := Paginate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	tests := []struct {
		query      string
		wantStatus int
		wantPage   int
	}{
		{"", http.StatusOK, 1},
		{"?page=3", http.StatusOK, 3},
		{"?page=0", http.StatusNotFound, 0},
		{"?page=-1", http.StatusNotFound, 0},
		{"?page=abc", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		got = 0
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/articles/"+tt.query, nil))

		assert.Equal(t, tt.wantStatus, w.Code, tt.query)
		assert.Equal(t, tt.wantPage, got, tt.query)
	}
}

func items(n int) []render.Renderer {
	out := make([]render.Renderer, n)
	for i := range out {
		out[i] = &Page{Count: int64(i)}
	}

	return out
}

func TestNew(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/articles/?search=go&page=2", nil)

	p, err := New(r, 2, 30, items(PageSize))
	require.NoError(t, err)
	assert.EqualValues(t, 30, p.Count)
	require.NotNil(t, p.Next)
	assert.Equal(t, "http://example.com/articles/?page=3&search=go", *p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "http://example.com/articles/?search=go", *p.Previous)

	p, err = New(r, 3, 30, items(6))
	require.NoError(t, err)
	assert.Nil(t, p.Next)
	assert.Equal(t, "http://example.com/articles/?page=2&search=go", *p.Previous)
}

func TestNewFirstPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/topics/1/articles/", nil)

	p, err := New(r, 1, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, p.Results)
	assert.Nil(t, p.Next)
	assert.Nil(t, p.Previous)
}

func TestNewPastLastPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/articles/?page=4", nil)

	_, err := New(r, 4, int64(3*PageSize), nil)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = New(r, 3, int64(2*PageSize+1), items(1))
	assert.NoError(t, err)
}

func TestOffset(t *testing.T) {
	for page := 1; page <= 3; page++ {
		assert.Equal(t, (page-1)*12, Offset(page), strconv.Itoa(page))
	}
}
