package domain

import "errors"

var (
	// ErrRateLimited indica orçamento esgotado na janela corrente (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrPreconditionViolation indica que o rate limit rodou sem identidade no
	// contexto, ou seja, o gate de autenticação não foi montado antes. É um
	// defeito de composição (HTTP 500), não algo que o cliente consiga provocar.
	ErrPreconditionViolation = errors.New("rate limit precondition violated: no identity in request context")

	// ErrNoSlot indica que não houve vaga de concorrência dentro do prazo.
	ErrNoSlot = errors.New("no concurrency slot available")
)
