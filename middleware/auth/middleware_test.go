package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/auth/infra"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T, opts Options) (http.Handler, *int, *domain.Identity) {
	t.Helper()
	calls := 0
	var seen domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		seen, _ = domain.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(opts)(next), &calls, &seen
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	h, calls, seen := newGate(t, Options{Identities: infra.NewStaticSet([]string{"abc"})})

	r := httptest.NewRequest(http.MethodGet, "http://example/vault/items", nil)
	r.Header.Set("Authorization", "Bearer abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, domain.Identity("abc"), *seen)
}

func TestMiddleware_RejectionsLookIdentical(t *testing.T) {
	headers := map[string]string{
		"missing":   "",
		"malformed": "Basic abc",
		"unknown":   "Bearer nope",
	}

	var bodies []string
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			h, calls, _ := newGate(t, Options{Identities: infra.NewStaticSet([]string{"abc"})})

			r := httptest.NewRequest(http.MethodPost, "http://example/vault", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, w.Header().Get("Retry-After"))
			assert.Zero(t, *calls, "handler must not be invoked")
			bodies = append(bodies, w.Body.String())
		})
	}

	require.Len(t, bodies, len(headers))
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b, "401 bodies must not reveal the reason")
	}
}

func TestMiddleware_CountsRejectionReasons(t *testing.T) {
	counter := NewRejectionsCounter("test")
	h, _, _ := newGate(t, Options{
		Identities: infra.NewStaticSet([]string{"abc"}),
		Rejections: counter,
	})

	for _, header := range []string{"", "Bearer nope", "Bearer nope"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(counter.WithLabelValues("missing")))
	assert.Equal(t, float64(2), testutil.ToFloat64(counter.WithLabelValues("unknown")))
}
