package infra

import (
	"sync"
	"time"

	"vault-gateway/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

// DefaultTTL é a janela do rate limit: budgets são "requests por minuto".
const DefaultTTL = 60 * time.Second

// BucketTable é a tabela de buckets de uma rota.
//
// Todo acesso passa por um único mutex: TryConsume (caminho do request) e
// Expire (callback do timer) nunca discordam sobre quem é dono do bucket.
type BucketTable struct {
	mu      sync.Mutex
	buckets map[domain.Key]*domain.Bucket
	nextGen uint64

	maxRPM uint32
	ttl    time.Duration
	clock  domain.Clock
	timers *TimerRegistry
	logger *zap.Logger
}

var _ domain.BucketTable = (*BucketTable)(nil)

type TableOption func(*BucketTable)

func WithClock(c domain.Clock) TableOption {
	return func(t *BucketTable) { t.clock = c }
}

func WithTTL(d time.Duration) TableOption {
	return func(t *BucketTable) { t.ttl = d }
}

func WithTableLogger(l *zap.Logger) TableOption {
	return func(t *BucketTable) { t.logger = l }
}

// NewBucketTable cria a tabela de uma rota com orçamento maxRPM por janela.
// maxRPM = 0 bloqueia tudo.
func NewBucketTable(maxRPM uint32, opts ...TableOption) *BucketTable {
	t := &BucketTable{
		buckets: make(map[domain.Key]*domain.Bucket),
		maxRPM:  maxRPM,
		ttl:     DefaultTTL,
		clock:   SystemClock(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.ttl <= 0 {
		t.ttl = DefaultTTL
	}
	t.timers = NewTimerRegistry(t.clock)
	return t
}

func (t *BucketTable) MaxRPM() uint32     { return t.maxRPM }
func (t *BucketTable) TTL() time.Duration { return t.ttl }

// TryConsume implementa domain.BucketTable.
func (t *BucketTable) TryConsume(key domain.Key) domain.Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	b, ok := t.buckets[key]
	if ok && now.Sub(b.AllocatedAt) >= t.ttl {
		// janela vencida mas o timer ainda não rodou: trata como ausente
		ok = false
	}
	if !ok {
		return t.allocateLocked(key, now)
	}

	if b.Remaining > 0 {
		b.Remaining--
		return domain.Decision{Allowed: true, Limit: t.maxRPM, Remaining: b.Remaining}
	}

	return domain.Decision{
		Allowed:    false,
		Limit:      t.maxRPM,
		RetryAfter: domain.RetryAfter(t.ttl, now.Sub(b.AllocatedAt)),
	}
}

func (t *BucketTable) allocateLocked(key domain.Key, now time.Time) domain.Decision {
	t.nextGen++
	gen := t.nextGen

	dec := domain.Decision{Limit: t.maxRPM}
	remaining := uint32(0)
	if t.maxRPM > 0 {
		remaining = t.maxRPM - 1
		dec.Allowed = true
	} else {
		dec.RetryAfter = domain.RetryAfter(t.ttl, 0)
	}
	dec.Remaining = remaining

	t.buckets[key] = &domain.Bucket{AllocatedAt: now, Remaining: remaining, Generation: gen}
	t.timers.Schedule(key, t.ttl, func() { t.Expire(key, gen) })
	return dec
}

// Expire remove o bucket da chave se ele ainda for da geração informada.
// Um timer que chega depois de uma realocação (ou de outra remoção) é no-op.
func (t *BucketTable) Expire(key domain.Key, generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	if !ok || b.Generation != generation {
		return false
	}
	delete(t.buckets, key)
	t.logger.Debug("rate bucket expired", zap.Uint64("generation", generation))
	return true
}

// Peek devolve uma cópia do bucket atual da chave, sem consumir.
func (t *BucketTable) Peek(key domain.Key) (domain.Bucket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.buckets[key]
	if !ok {
		return domain.Bucket{}, false
	}
	return *b, true
}

// Len devolve quantos buckets estão vivos (inclusive vencidos ainda não expirados).
func (t *BucketTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// Close abandona os timers de expiração sem esperar por eles.
func (t *BucketTable) Close() {
	t.timers.StopAll()
}

// PendingExpiries devolve quantos timers de expiração estão agendados.
func (t *BucketTable) PendingExpiries() int {
	return t.timers.Len()
}
