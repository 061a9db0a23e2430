package infra

import (
	"sync"
	"time"

	"vault-gateway/middleware/ratelimit/domain"
)

// TimerRegistry guarda um timer de expiração por chave.
//
// StopAll abandona todos os timers sem esperar por eles; depois disso Schedule
// vira no-op (a tabela continua correta via reset preguiçoso).
type TimerRegistry struct {
	clock domain.Clock

	mu      sync.Mutex
	timers  map[domain.Key]*scheduled
	stopped bool
}

type scheduled struct {
	timer domain.Timer
}

func NewTimerRegistry(clock domain.Clock) *TimerRegistry {
	if clock == nil {
		clock = SystemClock()
	}
	return &TimerRegistry{
		clock:  clock,
		timers: make(map[domain.Key]*scheduled),
	}
}

// Schedule agenda action para daqui a delay, substituindo (e parando) um timer
// anterior da mesma chave. Retorna false se o registro já foi parado.
func (r *TimerRegistry) Schedule(key domain.Key, delay time.Duration, action func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return false
	}
	if old, ok := r.timers[key]; ok {
		old.timer.Stop()
	}

	ent := &scheduled{}
	r.timers[key] = ent
	// o callback só consegue pegar r.mu depois que este Schedule retornar,
	// então ent.timer já está atribuído quando release rodar.
	ent.timer = r.clock.AfterFunc(delay, func() {
		r.release(key, ent)
		action()
	})
	return true
}

// Cancel para o timer da chave, se houver.
func (r *TimerRegistry) Cancel(key domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.timers[key]
	if !ok {
		return false
	}
	delete(r.timers, key)
	return ent.timer.Stop()
}

// StopAll para todos os timers pendentes e não aceita novos agendamentos.
func (r *TimerRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	for key, ent := range r.timers {
		ent.timer.Stop()
		delete(r.timers, key)
	}
}

// Len devolve quantos timers estão registrados.
func (r *TimerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *TimerRegistry) release(key domain.Key, ent *scheduled) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timers[key] == ent {
		delete(r.timers, key)
	}
}
