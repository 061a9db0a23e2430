package domain

// Camada de domínio do rate limit.
//
// Janela fixa por identidade: o primeiro request aloca o bucket e já consome
// uma unidade; o bucket morre TTL depois de AllocatedAt.

import (
	"math"
	"time"
)

// Key identifica um bucket dentro de uma tabela. Cada rota tem a sua tabela,
// então a chave é só a identidade.
type Key string

// Bucket é o orçamento de uma chave na janela corrente.
// Invariante: Remaining <= limite da rota.
type Bucket struct {
	AllocatedAt time.Time
	Remaining   uint32
	// Generation distingue alocações sucessivas da mesma chave, para que um
	// timer antigo não remova um bucket realocado.
	Generation uint64
}

// BucketTable é a seção crítica única do rate limit: ler, checar e
// decrementar (ou criar) acontecem juntos.
type BucketTable interface {
	TryConsume(Key) Decision
	Expire(key Key, generation uint64) bool
}

type Decision struct {
	Allowed bool
	// Limit é o max_rpm configurado na rota.
	Limit uint32
	// Remaining é o saldo após esta decisão.
	Remaining uint32
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear,
	// sempre em segundos inteiros e nunca negativo.
	RetryAfter time.Duration
}

// RetryAfterSeconds devolve RetryAfter em segundos inteiros (>= 0).
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int(d.RetryAfter / time.Second)
}

// RetryAfter calcula max(0, ttl - elapsed) arredondado para cima em segundos.
func RetryAfter(ttl, elapsed time.Duration) time.Duration {
	left := ttl - elapsed
	if left <= 0 {
		return 0
	}
	secs := math.Ceil(left.Seconds())
	return time.Duration(secs) * time.Second
}
