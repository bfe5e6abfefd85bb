// Package admin serves the staff-only routes.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/paginate"
	"github.com/SergeyParamoshkin/blog/internal/store"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

const MsgTopicExists = "Topic with this name already exists."

type Store interface {
	CreateTopic(ctx context.Context, t *model.Topic) error
}

type API struct {
	store    Store
	articles *article.API
	log      *zap.SugaredLogger
}

func NewAPI(s Store, articles *article.API, log *zap.SugaredLogger) *API {
	return &API{store: s, articles: articles, log: log}
}

// Router is a sub-router for staff users.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(auth.RequireUser)
	r.Use(auth.AdminOnly)
	r.With(paginate.Paginate).Get("/articles", a.ListArticles)
	r.Post("/topics", a.CreateTopic)

	return r
}

// TopicRequest is the request payload for the Topic data model.
type TopicRequest struct {
	Name *string `json:"name" validate:"omitnil,notblank,max=100"`
}

func (p *TopicRequest) Bind(r *http.Request) error {
	errs := validate.Struct(p)
	errs.Require("name", p.Name != nil)

	return errs.Err()
}

// ListArticles lists every article, published or not. ?is_published
// narrows the result to one state.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	q, err := article.ParseFilters(r)
	errs := validate.Errors{}
	var fields validate.Errors
	if errors.As(err, &fields) {
		errs = fields
	}

	if raw := r.URL.Query().Get("is_published"); raw != "" {
		published, perr := strconv.ParseBool(raw)
		if perr != nil {
			errs["is_published"] = "Must be a valid boolean."
		} else {
			q.Published = &published
		}
	}
	if err := errs.Err(); err != nil {
		_ = render.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	a.articles.RenderPage(w, r, q)
}

// CreateTopic adds a topic.
func (a *API) CreateTopic(w http.ResponseWriter, r *http.Request) {
	data := &TopicRequest{}
	if err := validate.Bind(r, data); err != nil {
		_ = render.Render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	topic := &model.Topic{Name: strings.TrimSpace(*data.Name)}
	if err := a.store.CreateTopic(r.Context(), topic); err != nil {
		if errors.Is(err, store.ErrConflict) {
			_ = render.Render(w, r, errresponse.ErrInvalidRequest(validate.Errors{"name": MsgTopicExists}))

			return
		}
		a.log.Errorw("create topic", "error", err)
		_ = render.Render(w, r, errresponse.ErrInternal(err))

		return
	}

	a.log.Infow("topic created", "name", topic.Name)
	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, articleresponse.NewTopicResponse(topic))
}
