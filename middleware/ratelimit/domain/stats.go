package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
// Route é o padrão configurado (ex.: "PUT /vault/items/{id}"), não o path
// concreto, para manter a cardinalidade sob controle.
type StatsEvent struct {
	Key     Key
	Route   string
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// RouteLabel devolve Route, ou "METHOD PATH" quando a rota não foi informada.
func (ev StatsEvent) RouteLabel() string {
	if ev.Route != "" {
		return ev.Route
	}
	return ev.Method + " " + ev.Path
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
