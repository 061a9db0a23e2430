package infra

import (
	"context"
	"maps"
	"sync"

	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/ratelimit/domain"
)

// Counters conta decisões de admissão.
type Counters struct {
	Allowed int64
	Denied  int64
}

func (c Counters) with(allowed bool) Counters {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
	return c
}

// StatsSnapshot é uma cópia consistente dos contadores em memória.
// ByIdentity é indexado pelo fingerprint da identidade.
type StatsSnapshot struct {
	Total      Counters
	ByRoute    map[string]Counters
	ByIdentity map[string]Counters
}

// MemoryStatsStore guarda os contadores no processo; zera no restart.
// ByIdentity só cresce quando trackIdentities está ligado.
type MemoryStatsStore struct {
	mu         sync.Mutex
	total      Counters
	byRoute    map[string]Counters
	byIdentity map[string]Counters

	trackIdentities bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackIdentities(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackIdentities = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute:    make(map[string]Counters),
		byIdentity: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.RouteLabel()
	var fp string
	if s.trackIdentities && ev.Key != "" {
		fp = authdomain.Identity(ev.Key).Fingerprint()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = s.total.with(ev.Allowed)
	s.byRoute[route] = s.byRoute[route].with(ev.Allowed)
	if fp != "" {
		s.byIdentity[fp] = s.byIdentity[fp].with(ev.Allowed)
	}
	return nil
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Total:      s.total,
		ByRoute:    maps.Clone(s.byRoute),
		ByIdentity: maps.Clone(s.byIdentity),
	}
}
