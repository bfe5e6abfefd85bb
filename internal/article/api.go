// Package article serves the article endpoints.
package article

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/articleresponse"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/errresponse"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/paginate"
	"github.com/SergeyParamoshkin/blog/internal/slug"
	"github.com/SergeyParamoshkin/blog/internal/store"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

const (
	MsgNotOwner             = "You can only modify your own articles."
	MsgNotOwnerDelete       = "You can only remove your own articles."
	MsgConfirmationRequired = "Deletion confirmation required."
)

// slugAttempts bounds retries when a concurrent insert takes the slug.
const slugAttempts = 3

// Store is the persistence the article endpoints need.
type Store interface {
	ListArticles(ctx context.Context, q store.ArticleQuery) ([]model.Article, int64, error)
	GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateArticle(ctx context.Context, a *model.Article) error
	UpdateArticle(ctx context.Context, a *model.Article) error
	DeleteArticle(ctx context.Context, id uint) error
	GetTopic(ctx context.Context, id uint) (*model.Topic, error)
}

type API struct {
	store Store
	log   *zap.SugaredLogger
}

func NewAPI(s Store, log *zap.SugaredLogger) *API {
	return &API{store: s, log: log}
}

func (a *API) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		a.log.Errorw(err.Error())
		_ = render.Render(w, r, errresponse.ErrRender(err))
	}
}

// ParseFilters reads the topic, author and search query parameters.
func ParseFilters(r *http.Request) (store.ArticleQuery, error) {
	q := store.ArticleQuery{Search: r.URL.Query().Get("search")}
	errs := validate.Errors{}

	for param, dst := range map[string]*uint{"topic": &q.TopicID, "author": &q.AuthorID} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			errs[param] = "Select a valid choice. That choice is not one of the available choices."

			continue
		}
		*dst = uint(n)
	}

	return q, errs.Err()
}

// RenderPage lists one page of articles matching q. The page number comes
// from the paginate middleware.
func (a *API) RenderPage(w http.ResponseWriter, r *http.Request, q store.ArticleQuery) {
	page := paginate.FromContext(r.Context())
	q.Limit = paginate.PageSize
	q.Offset = paginate.Offset(page)

	articles, total, err := a.store.ListArticles(r.Context(), q)
	if err != nil {
		a.fail(w, r, err)

		return
	}

	p, err := paginate.New(r, page, total, articleresponse.NewArticleListResponse(articles))
	if err != nil {
		a.render(w, r, errresponse.ErrInvalidPage)

		return
	}

	a.render(w, r, p)
}

// List returns published articles, newest first.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseFilters(r)
	if err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	q.Published = store.OnlyPublished()

	a.RenderPage(w, r, q)
}

// checkTopic reports a field error when the payload names a missing topic.
func (a *API) checkTopic(ctx context.Context, data *ArticleRequest) error {
	if data.TopicID == nil {
		return nil
	}

	_, err := a.store.GetTopic(ctx, *data.TopicID)
	if errors.Is(err, store.ErrNotFound) {
		return validate.Errors{"topic_id": fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *data.TopicID)}
	}

	return err
}

// uniqueSlug derives a slug from title, suffixing -2, -3, ... until free.
func (a *API) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		taken, err := a.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// Create persists the posted Article and returns it
// back to the client as an acknowledgement.
func (a *API) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	data := &ArticleRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if err := a.checkTopic(r.Context(), data); err != nil {
		a.badInput(w, r, err)

		return
	}

	article := &model.Article{AuthorID: caller.ID}
	data.Apply(article)

	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		article.Slug, err = a.uniqueSlug(r.Context(), article.Title)
		if err != nil {
			break
		}
		err = a.store.CreateArticle(r.Context(), article)
		if !errors.Is(err, store.ErrConflict) {
			break
		}
	}
	if err != nil {
		a.fail(w, r, err)

		return
	}

	a.log.Infow("article created", "slug", article.Slug, "author", caller.Username)
	render.Status(r, http.StatusCreated)
	a.render(w, r, articleresponse.NewArticleResponse(article))
}

// Get returns the specific Article, published or not.
func (a *API) Get(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, articleresponse.NewArticleResponse(FromContext(r.Context())))
}

// Update applies a full (PUT) or partial (PATCH) update. Only the author
// may update an article.
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	article := FromContext(r.Context())

	if !article.OwnedBy(caller) {
		a.render(w, r, errresponse.ErrForbidden(MsgNotOwner))

		return
	}

	data := &ArticleRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if err := a.checkTopic(r.Context(), data); err != nil {
		a.badInput(w, r, err)

		return
	}

	data.Apply(article)
	if err := a.store.UpdateArticle(r.Context(), article); err != nil {
		a.fail(w, r, err)

		return
	}

	a.render(w, r, articleresponse.NewArticleResponse(article))
}

// Delete removes an existing Article. The body must carry
// {"confirm_deletion": true}.
func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())
	article := FromContext(r.Context())

	if !article.OwnedBy(caller) {
		a.render(w, r, errresponse.ErrForbidden(MsgNotOwnerDelete))

		return
	}

	data := &DeleteRequest{}
	if err := validate.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}
	if !data.ConfirmDeletion {
		a.render(w, r, errresponse.ErrBadRequest(MsgConfirmationRequired))

		return
	}

	if err := a.store.DeleteArticle(r.Context(), article.ID); err != nil {
		a.fail(w, r, err)

		return
	}

	a.log.Infow("article deleted", "slug", article.Slug, "author", caller.Username)
	render.NoContent(w, r)
}

// badInput renders validation errors as 400 and anything else through fail.
func (a *API) badInput(w http.ResponseWriter, r *http.Request, err error) {
	var fields validate.Errors
	if errors.As(err, &fields) {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	a.fail(w, r, err)
}
