package domain

import "time"

// Clock abstrai o tempo para a tabela de buckets (e para os testes).
type Clock interface {
	Now() time.Time
	// AfterFunc agenda f em sua própria goroutine após d.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer é um timer de disparo único que pode ser abandonado.
// Stop não espera f terminar caso ela já esteja rodando.
type Timer interface {
	Stop() bool
}
