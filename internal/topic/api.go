// Package topic serves the topic endpoints.
package topic

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/paginate"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

type Store interface {
	ListTopics(ctx context.Context) ([]model.Topic, error)
}

type API struct {
	store    Store
	articles *article.API
	log      *zap.SugaredLogger
}

// NewAPI builds the topic handlers. Article pages are rendered by articles.
func NewAPI(s Store, articles *article.API, log *zap.SugaredLogger) *API {
	return &API{store: s, articles: articles, log: log}
}

// List returns every topic ordered by name.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	topics, err := a.store.ListTopics(r.Context())
	if err != nil {
		a.log.Errorw("list topics", "error", err)
		_ = render.Render(w, r, errresponse.ErrInternal(err))

		return
	}

	if err := render.RenderList(w, r, articleresponse.NewTopicListResponse(topics)); err != nil {
		a.log.Errorw(err.Error())
	}
}

// ListArticles returns the published articles of one topic. An unknown
// topic yields an empty page.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "topicID"), 10, 32)
	if err != nil {
		_ = render.Render(w, r, errresponse.ErrNotFound)

		return
	}
	// A zero TopicID means "any topic" to the store.
	if id == 0 {
		a.renderEmptyPage(w, r)

		return
	}

	a.articles.RenderPage(w, r, store.ArticleQuery{
		TopicID:   uint(id),
		Published: store.OnlyPublished(),
	})
}

func (a *API) renderEmptyPage(w http.ResponseWriter, r *http.Request) {
	p, err := paginate.New(r, paginate.FromContext(r.Context()), 0, []render.Renderer{})
	if err != nil {
		_ = render.Render(w, r, errresponse.ErrInvalidPage)

		return
	}
	if err := render.Render(w, r, p); err != nil {
		a.log.Errorw(err.Error())
	}
}
