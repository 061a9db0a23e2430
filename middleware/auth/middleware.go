package auth

import (
	"net/http"

	"vault-gateway/middleware/auth/application"
	"vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/requestid"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Options struct {
	Identities domain.IdentitySet
	Logger     *zap.Logger
	// Rejections, se definido, é incrementado com o label "reason".
	Rejections *prometheus.CounterVec
}

// NewRejectionsCounter cria o contador usado em Options.Rejections.
func NewRejectionsCounter(namespace string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "rejections_total",
		Help:      "Requests rejected by the identity gate, by internal reason.",
	}, []string{"reason"})
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc := application.Service{Identities: opts.Identities}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := svc.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				reason := domain.Reason(err)
				if opts.Rejections != nil {
					opts.Rejections.WithLabelValues(reason).Inc()
				}
				opts.Logger.Debug("request rejected by identity gate",
					zap.String("reason", reason),
					zap.String("request_id", requestid.FromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := domain.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
