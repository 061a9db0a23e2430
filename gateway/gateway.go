package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"vault-gateway/middleware/auth"
	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/ratelimit"
	"vault-gateway/middleware/ratelimit/domain"
	"vault-gateway/middleware/ratelimit/infra"
	"vault-gateway/middleware/requestid"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Options struct {
	Routes     []Route
	Identities authdomain.IdentitySet

	// Upstream atende toda rota sem handler próprio em Handlers.
	Upstream http.Handler
	// Handlers por rota, indexados por Route.String().
	Handlers map[string]http.Handler

	Stats               domain.StatsStore
	Clock               domain.Clock
	TTL                 time.Duration
	AddRateLimitHeaders bool
	AuthRejections      *prometheus.CounterVec
	Logger              *zap.Logger
}

// Gateway é o http.Handler montado. Cada rota é dona de uma BucketTable.
type Gateway struct {
	router chi.Router
	tables map[string]*infra.BucketTable
}

func New(opts Options) (*Gateway, error) {
	if len(opts.Routes) == 0 {
		return nil, errors.New("gateway: no routes configured")
	}
	if opts.Identities == nil {
		return nil, errors.New("gateway: identity set is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	g := &Gateway{
		router: chi.NewRouter(),
		tables: make(map[string]*infra.BucketTable, len(opts.Routes)),
	}

	type binding struct {
		route   Route
		handler http.Handler
	}
	bindings := make([]binding, 0, len(opts.Routes))
	for _, rt := range opts.Routes {
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("gateway: %w", err)
		}
		if _, dup := g.tables[rt.String()]; dup {
			return nil, fmt.Errorf("gateway: duplicate route %q", rt.String())
		}

		h := opts.Handlers[rt.String()]
		if h == nil {
			h = opts.Upstream
		}
		if h == nil {
			return nil, fmt.Errorf("gateway: no handler for route %q", rt.String())
		}

		tableOpts := []infra.TableOption{
			infra.WithTTL(opts.TTL),
			infra.WithTableLogger(opts.Logger.With(zap.String("route", rt.String()))),
		}
		if opts.Clock != nil {
			tableOpts = append(tableOpts, infra.WithClock(opts.Clock))
		}
		g.tables[rt.String()] = infra.NewBucketTable(rt.MaxRPM, tableOpts...)
		bindings = append(bindings, binding{route: rt, handler: h})
	}

	g.router.Use(requestid.Middleware)
	g.router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(auth.Options{
			Identities: opts.Identities,
			Logger:     opts.Logger,
			Rejections: opts.AuthRejections,
		}))

		for _, b := range bindings {
			limiter := ratelimit.Middleware(ratelimit.Options{
				Table:               g.tables[b.route.String()],
				Route:               b.route.String(),
				Stats:               opts.Stats,
				Logger:              opts.Logger,
				AddRateLimitHeaders: opts.AddRateLimitHeaders,
			})
			r.With(limiter).Method(b.route.Method, b.route.Pattern, b.handler)
		}
	})

	return g, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.router.ServeHTTP(w, r)
}

// Table devolve a tabela de buckets da rota (ex.: "POST /vault").
func (g *Gateway) Table(route string) (*infra.BucketTable, bool) {
	t, ok := g.tables[route]
	return t, ok
}

// Close abandona os timers de expiração de todas as rotas, sem esperar.
func (g *Gateway) Close() {
	for _, t := range g.tables {
		t.Close()
	}
}
