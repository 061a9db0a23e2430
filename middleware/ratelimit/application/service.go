package application

import (
	"context"
	"fmt"

	authdomain "vault-gateway/middleware/auth/domain"
	"vault-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit de uma rota.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Table domain.BucketTable
}

// Admit consome uma unidade do orçamento da identidade anexada ao ctx.
//
// Erros:
//   - domain.ErrPreconditionViolation: ctx sem identidade (gate não montado antes)
//   - domain.ErrRateLimited: orçamento esgotado; a Decision traz o RetryAfter
func (s Service) Admit(ctx context.Context) (domain.Decision, error) {
	id, ok := authdomain.IdentityFromContext(ctx)
	if !ok {
		return domain.Decision{}, domain.ErrPreconditionViolation
	}
	if s.Table == nil {
		return domain.Decision{}, fmt.Errorf("%w: no bucket table configured", domain.ErrPreconditionViolation)
	}

	dec := s.Table.TryConsume(domain.Key(id))
	if !dec.Allowed {
		return dec, domain.ErrRateLimited
	}
	return dec, nil
}
