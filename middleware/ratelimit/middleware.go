package ratelimit

import (
	"errors"
	"net/http"
	"time"

	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/ratelimit/application"
	"vault-gateway/middleware/ratelimit/domain"
	"vault-gateway/middleware/requestid"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	// Table é obrigatória: uma por rota.
	Table domain.BucketTable
	// Route é o rótulo da rota em stats e logs (ex.: "POST /vault").
	Route               string
	Stats               domain.StatsStore
	Logger              *zap.Logger
	RejectStatus        int
	AddRateLimitHeaders bool
	// DenyLogInterval limita os logs de bloqueio a um por intervalo.
	DenyLogInterval time.Duration
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Table == nil {
		panic("ratelimit: Options.Table is required")
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DenyLogInterval == 0 {
		opts.DenyLogInterval = time.Second
	}

	svc := application.Service{Table: opts.Table}
	denyLog := &rate.Sometimes{Interval: opts.DenyLogInterval}
	logger := opts.Logger.With(zap.String("route", opts.Route))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec, err := svc.Admit(r.Context())
			if errors.Is(err, domain.ErrPreconditionViolation) {
				logger.Error("rate limit reached without an authenticated identity; identity gate must run first",
					zap.String("request_id", requestid.FromContext(r.Context())),
					zap.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			id, _ := authdomain.IdentityFromContext(r.Context())
			if opts.Stats != nil {
				ev := domain.StatsEvent{
					Key:     domain.Key(id),
					Route:   opts.Route,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}
				if serr := opts.Stats.Record(r.Context(), ev); serr != nil {
					logger.Warn("failed to record rate limit stats", zap.Error(serr))
				}
			}

			if opts.AddRateLimitHeaders {
				setLimitHeaders(w.Header(), dec)
			}

			if errors.Is(err, domain.ErrRateLimited) {
				retry := dec.RetryAfterSeconds()
				denyLog.Do(func() {
					logger.Info("identity is rate limited",
						zap.String("identity", id.Fingerprint()),
						zap.Int("retry_after_s", retry),
						zap.String("request_id", requestid.FromContext(r.Context())),
					)
				})
				setRetryAfter(w.Header(), retry)
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
