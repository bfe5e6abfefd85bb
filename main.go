//
// BLOG
// ====
// A REST service for articles grouped by topics, with reviews, token
// authentication and a small staff area.
//
// Also check the generated docs from passing the -routes flag,
// to run yourself do: `go run . -routes`
//
// Boot the server:
// ----------------
// $ go run main.go                                   # in-memory store
// $ BLOG_DATABASE_DSN=postgres://blog@localhost/blog go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/
// root.
//
// $ curl -X POST -d '{"username":"peter","email":"peter@example.com","password":"pw","password_confirmation":"pw"}' http://localhost:3333/register/
// {"message":"Account created successfully. Please sign in.","token":"9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"}
//
// $ curl -H 'Authorization: Token 9944b0...' -X POST -d '{"title":"Hi","content":"sup","topic_id":1,"is_published":true}' http://localhost:3333/articles/
// {"id":2,"title":"Hi","slug":"hi",...}
//
// $ curl http://localhost:3333/articles/?search=hi
// {"count":1,"next":null,"previous":null,"results":[...]}
//
// $ curl -H 'Authorization: Token 9944b0...' -X DELETE -d '{"confirm_deletion":true}' http://localhost:3333/articles/hi/
//
// Grant staff rights (postgres only):
// -----------------------------------
// $ go run main.go -promote peter
//
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/admin"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/cache"
	"github.com/SergeyParamoshkin/blog/internal/config"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/server"
	"github.com/SergeyParamoshkin/blog/internal/store"
)

const ServiceName = "blog"

type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() // flushes buffer, if any
	zap.ReplaceGlobals(logger)

	a := App{
		sugarLogger: logger.Sugar().Named(ServiceName),
		config:      cfg,
	}

	if err := a.run(context.Background()); err != nil {
		a.sugarLogger.Fatalw("exit", "error", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func (a *App) run(ctx context.Context) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}

	var tokenCache auth.Cache
	if a.config.RedisAddr != "" {
		client, err := cache.Connect(ctx, a.config.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		tokenCache = cache.NewTokens(client, a.config.TokenCacheTTL, a.sugarLogger.Named("cache"))
		a.sugarLogger.Infow("token cache enabled", "addr", a.config.RedisAddr, "ttl", a.config.TokenCacheTTL)
	}

	if a.config.Promote != "" {
		return a.promote(ctx, s, tokenCache)
	}

	m, err := metrics.New(ServiceName)
	if err != nil {
		return err
	}
	global.SetMeterProvider(m.MeterProvider())

	r := server.NewRouter(server.Options{
		Store:   s,
		Cache:   tokenCache,
		Metrics: m,
		Log:     a.sugarLogger,
	})

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if a.config.Routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/blog",
			Intro:       "Generated routes of the blog API.",
		}))

		return nil
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", m.Handler().ServeHTTP)

	go func() {
		a.sugarLogger.Infow("diag listening", "addr", a.config.DiagAddr)
		if err := http.ListenAndServe(a.config.DiagAddr, diagRouter); err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	}()

	a.sugarLogger.Infow("listening", "addr", a.config.Addr, "store", a.config.Store)

	return http.ListenAndServe(a.config.Addr, r)
}

// openStore returns the configured backend; postgres is migrated first.
func (a *App) openStore() (server.Store, error) {
	if a.config.Store == config.StoreMemory {
		a.sugarLogger.Warnw("using the in-memory store, data is lost on exit")

		return store.NewMemory(), nil
	}

	db, err := store.Open(a.config.DatabaseDSN, a.sugarLogger, a.config.Debug)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store.NewGorm(db), nil
}

func (a *App) promote(ctx context.Context, s server.Store, tokenCache auth.Cache) error {
	ps, ok := s.(admin.PromoteStore)
	if !ok {
		return fmt.Errorf("store %T cannot grant staff rights", s)
	}
	if err := admin.Promote(ctx, ps, tokenCache, a.config.Promote); err != nil {
		return err
	}
	a.sugarLogger.Infow("user promoted to staff", "username", a.config.Promote)

	return nil
}

// Errors passed to render.Respond directly are logged and answered with a
// generic body instead of leaking their text.
func init() {
	render.Respond = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		if err, ok := v.(error); ok {
			// We set a default error status response code if one hasn't been set.
			if _, ok := r.Context().Value(render.StatusCtxKey).(int); !ok {
				w.WriteHeader(http.StatusBadRequest)
			}

			zap.S().Errorw("responding with a raw error", "error", err, "path", r.URL.Path)
			render.DefaultResponder(w, r, render.M{"status": "error"})

			return
		}

		render.DefaultResponder(w, r, v)
	}
}
