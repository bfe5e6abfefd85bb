// Package server assembles the HTTP routing table of the blog API.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/admin"
	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/paginate"
	"github.com/SergeyParamoshkin/blog/internal/review"
	"github.com/SergeyParamoshkin/blog/internal/store"
	"github.com/SergeyParamoshkin/blog/internal/topic"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

// Store is everything the handlers persist.
type Store interface {
	auth.Store
	article.Store
	topic.Store
	review.Store
	user.Store
	admin.Store
}

var (
	_ Store = (*store.Gorm)(nil)
	_ Store = (*store.Memory)(nil)
)

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

// Options configures NewRouter. Cache and Metrics are optional.
type Options struct {
	Store   Store
	Cache   auth.Cache
	Metrics *metrics.Metrics
	Log     *zap.SugaredLogger
}

// Logger puts a request scoped logger on the context.
func Logger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := log
			if id := middleware.GetReqID(r.Context()); id != "" {
				l = log.With("request_id", id)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, l)))
		})
	}
}

// LoggerFromContext returns the logger set by Logger, or a no-op logger.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(CtxKeyLogger).(*zap.SugaredLogger); ok {
		return l
	}

	return zap.NewNop().Sugar()
}

// NewRouter builds the API router.
func NewRouter(o Options) chi.Router {
	authn := auth.NewAuthenticator(o.Store, o.Cache, o.Log)
	articles := article.NewAPI(o.Store, o.Log)
	topics := topic.NewAPI(o.Store, articles, o.Log)
	reviews := review.NewAPI(o.Store, o.Log)
	users := user.NewAPI(o.Store, authn, o.Log)
	staff := admin.NewAPI(o.Store, articles, o.Log)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Logger(o.Log))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware)
	}
	r.Use(middleware.URLFormat)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(authn.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("root.")); err != nil {
			o.Log.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).Infow("ping with middle")
		if o.Metrics != nil {
			o.Metrics.Ping(r.Context())
		}
		if _, err := w.Write([]byte("pong")); err != nil {
			o.Log.Errorw(err.Error())
		}
	})

	// RESTy routes for "articles" resource
	r.Route("/articles", func(r chi.Router) {
		r.With(paginate.Paginate).Get("/", articles.List)    // GET /articles/?page=2&search=go
		r.With(auth.RequireUser).Post("/", articles.Create) // POST /articles/

		r.Route("/{articleID:[0-9]+}/reviews", func(r chi.Router) {
			r.Get("/", reviews.List)                           // GET /articles/7/reviews/
			r.With(auth.RequireUser).Post("/", reviews.Create) // POST /articles/7/reviews/
		})

		r.Route("/{articleSlug}", func(r chi.Router) {
			r.With(articles.ArticleCtx).Get("/", articles.Get) // GET /articles/whats-up/
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				r.Use(articles.ArticleCtx) // Load the *Article on the request context
				r.Put("/", articles.Update)
				r.Patch("/", articles.Update)
				r.Delete("/", articles.Delete)
			})
		})
	})

	r.Route("/topics", func(r chi.Router) {
		r.Get("/", topics.List)
		r.With(paginate.Paginate).Get("/{topicID}/articles", topics.ListArticles)
		r.With(paginate.Paginate).Get("/{topicID}/articles/", topics.ListArticles)
	})

	r.Route("/reviews/{reviewID}", func(r chi.Router) {
		r.With(reviews.ReviewCtx).Get("/", reviews.Get)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Use(reviews.ReviewCtx)
			r.Put("/", reviews.Update)
			r.Patch("/", reviews.Update)
			r.Delete("/", reviews.Delete)
		})
	})

	for _, prefix := range []string{"/register", "/register/"} {
		r.Post(prefix, users.Register)
	}
	for _, prefix := range []string{"/login", "/login/"} {
		r.Post(prefix, users.Login)
	}
	for _, prefix := range []string{"/logout", "/logout/"} {
		r.With(auth.RequireUser).Post(prefix, users.Logout)
	}

	// Mount the admin sub-router
	r.Mount("/admin", staff.Router())

	return r
}
