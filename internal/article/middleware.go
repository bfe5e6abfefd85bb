package article

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

type ctxKey int8

const ctxKeyArticle ctxKey = 0

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. In case
// the Article could not be found, we stop here and return a 404.
func (a *API) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		articleSlug := chi.URLParam(r, "articleSlug")
		if articleSlug == "" {
			a.render(w, r, errresponse.ErrNotFound)

			return
		}

		article, err := a.store.GetArticleBySlug(r.Context(), articleSlug)
		if err != nil {
			a.fail(w, r, err)

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyArticle, article)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the article loaded by ArticleCtx.
func FromContext(ctx context.Context) *model.Article {
	article, _ := ctx.Value(ctxKeyArticle).(*model.Article)

	return article
}

// fail renders a store error: missing rows are a 404, anything else a 500.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		a.render(w, r, errresponse.ErrNotFound)

		return
	}

	a.log.Errorw("article store", "error", err, "path", r.URL.Path)
	a.render(w, r, errresponse.ErrInternal(err))
}
