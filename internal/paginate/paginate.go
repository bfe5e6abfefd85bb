// Package paginate splits list responses into numbered pages.
package paginate

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
)

// PageSize is the number of items per page.
const PageSize = 12

const pageParam = "page"

type ctxKey int8

const ctxKeyPage ctxKey = 0

// ErrInvalidPage is returned for a page past the last one.
var ErrInvalidPage = errors.New("invalid page")

// Paginate reads ?page into the request context. Anything but a positive
// integer is answered with 404.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if raw := r.URL.Query().Get(pageParam); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				_ = render.Render(w, r, errresponse.ErrInvalidPage)

				return
			}
			page = n
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyPage, page)))
	})
}

// FromContext returns the requested page number, 1 if none was set.
func FromContext(ctx context.Context) int {
	if page, ok := ctx.Value(ctxKeyPage).(int); ok {
		return page
	}

	return 1
}

// Offset is the index of the first item on page.
func Offset(page int) int {
	return (page - 1) * PageSize
}

// Page is the response envelope of a paginated list.
type Page struct {
	Count    int64             `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []render.Renderer `json:"results"`
}

// New builds the envelope for one page out of total items. Page 1 always
// exists; later pages must hold at least one item.
func New(r *http.Request, page int, total int64, results []render.Renderer) (*Page, error) {
	if page > 1 && int64(Offset(page)) >= total {
		return nil, ErrInvalidPage
	}
	if results == nil {
		results = []render.Renderer{}
	}

	p := &Page{Count: total, Results: results}
	if int64(page*PageSize) < total {
		next := pageURL(r, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		p.Previous = &prev
	}

	return p, nil
}

func (p *Page) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// pageURL is the absolute URL of the request with the page parameter
// replaced. Page 1 drops the parameter.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(page))
	}

	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}

	return u.String()
}
