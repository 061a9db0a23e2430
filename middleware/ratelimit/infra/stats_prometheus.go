package infra

import (
	"context"
	"errors"

	"vault-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe as decisões como um contador por rota.
// A identidade não vira label (cardinalidade).
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra o contador em reg. Se já houver um contador
// igual registrado, ele é reaproveitado.
func NewPrometheusStatsStore(reg prometheus.Registerer, namespace string) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Admission decisions per route.",
	}, []string{"route", "decision"})

	if reg != nil {
		if err := reg.Register(decisions); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			decisions = existing
		}
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	decision := "denied"
	if ev.Allowed {
		decision = "allowed"
	}
	s.decisions.WithLabelValues(ev.RouteLabel(), decision).Inc()
	return nil
}

// Decisions devolve o contador (para testes e para registrar em outro lugar).
func (s *PrometheusStatsStore) Decisions() *prometheus.CounterVec { return s.decisions }
