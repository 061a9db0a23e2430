package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated é o único erro visível para o chamador (HTTP 401).
var ErrUnauthenticated = errors.New("unauthenticated")

// Motivos internos. Todos satisfazem errors.Is(err, ErrUnauthenticated) e só
// devem aparecer em logs/métricas, nunca na resposta.
var (
	ErrMissingCredential   = fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	ErrMalformedCredential = fmt.Errorf("%w: malformed credential", ErrUnauthenticated)
	ErrUnknownIdentity     = fmt.Errorf("%w: unknown identity", ErrUnauthenticated)
)

// Reason traduz o erro num rótulo curto (ex.: label de métrica).
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "missing"
	case errors.Is(err, ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown"
	default:
		return "other"
	}
}
