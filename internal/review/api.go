// Package review serves the review endpoints.
package review

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/store"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

const (
	MsgNotOwner       = "You can only modify your own reviews."
	MsgNotOwnerDelete = "You can only remove your own reviews."
)

type Store interface {
	GetArticle(ctx context.Context, id uint) (*model.Article, error)
	ListReviews(ctx context.Context, articleID uint) ([]model.Review, error)
	GetReview(ctx context.Context, id uint) (*model.Review, error)
	CreateReview(ctx context.Context, rv *model.Review) error
	UpdateReview(ctx context.Context, rv *model.Review) error
	DeleteReview(ctx context.Context, id uint) error
}

type API struct {
	store Store
	log   *zap.SugaredLogger
}

func NewAPI(s Store, log *zap.SugaredLogger) *API {
	return &API{store: s, log: log}
}

type ctxKey int8

const ctxKeyReview ctxKey = 0

func (a *API) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		a.log.Errorw(err.Error())
		_ = render.Render(w, r, errresponse.ErrRender(err))
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		a.render(w, r, errresponse.ErrNotFound)

		return
	}

	a.log.Errorw("review store", "error", err, "path", r.URL.Path)
	a.render(w, r, errresponse.ErrInternal(err))
}

func idParam(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}

// ReviewCtx loads the review named by the reviewID route parameter.
func (a *API) ReviewCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "reviewID")
		if !ok {
			a.render(w, r, errresponse.ErrNotFound)

			return
		}

		rv, err := a.store.GetReview(r.Context(), id)
		if err != nil {
			a.fail(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyReview, rv)))
	})
}

func FromContext(ctx context.Context) *model.Review {
	rv, _ := ctx.Value(ctxKeyReview).(*model.Review)

	return rv
}

// List returns the reviews of an article, oldest first. Unknown articles
// have no reviews.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	articleID, ok := idParam(r, "articleID")
	if !ok {
		a.render(w, r, errresponse.ErrNotFound)

		return
	}

	reviews, err := a.store.ListReviews(r.Context(), articleID)
	if err != nil {
		a.fail(w, r, err)

		return
	}

	list := []render.Renderer{}
	for i := range reviews {
		list = append(list, NewReviewResponse(&reviews[i]))
	}
	if err := render.RenderList(w, r, list); err != nil {
		a.log.Errorw(err.Error())
	}
}

// Create attaches a review by the caller to the article in the path.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	articleID, ok := idParam(r, "articleID")
	if !ok {
		a.render(w, r, errresponse.ErrNotFound)

		return
	}

	data := &ReviewRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if _, err := a.store.GetArticle(r.Context(), articleID); err != nil {
		a.fail(w, r, err)

		return
	}

	rv := &model.Review{ArticleID: articleID, UserID: caller.ID, Text: *data.Text}
	if err := a.store.CreateReview(r.Context(), rv); err != nil {
		a.fail(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	a.render(w, r, NewReviewResponse(rv))
}

func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, NewReviewResponse(FromContext(r.Context())))
}

// Update rewrites the text of a review. Only its author may do so.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	rv := FromContext(r.Context())

	if !rv.OwnedBy(caller) {
		a.render(w, r, errresponse.ErrForbidden(MsgNotOwner))

		return
	}

	data := &ReviewRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	if data.Text != nil {
		rv.Text = *data.Text
		if err := a.store.UpdateReview(r.Context(), rv); err != nil {
			a.fail(w, r, err)

			return
		}
	}

	a.render(w, r, NewReviewResponse(rv))
}

func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	rv := FromContext(r.Context())

	if !rv.OwnedBy(caller) {
		a.render(w, r, errresponse.ErrForbidden(MsgNotOwnerDelete))

		return
	}

	if err := a.store.DeleteReview(r.Context(), rv.ID); err != nil {
		a.fail(w, r, err)

		return
	}

	render.NoContent(w, r)
}
