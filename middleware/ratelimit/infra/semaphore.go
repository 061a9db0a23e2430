package infra

import (
	"context"
	"sync"

	"vault-gateway/middleware/ratelimit/domain"
)

// Semaphore limita requests em voo com um channel bufferizado.
type Semaphore struct {
	slots chan struct{}
}

var _ domain.SlotPool = (*Semaphore)(nil)

// NewSemaphore cria um semáforo com n vagas. n < 1 vira 1.
func NewSemaphore(n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{slots: make(chan struct{}, n)}
}

// Acquire tenta primeiro sem bloquear; só depois espera por vaga ou pelo ctx.
// O release devolvido é idempotente.
func (s *Semaphore) Acquire(ctx context.Context) (func(), bool) {
	select {
	case s.slots <- struct{}{}:
		return s.releaser(), true
	default:
	}

	select {
	case s.slots <- struct{}{}:
		return s.releaser(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *Semaphore) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-s.slots }) }
}

func (s *Semaphore) InUse() int    { return len(s.slots) }
func (s *Semaphore) Capacity() int { return cap(s.slots) }
