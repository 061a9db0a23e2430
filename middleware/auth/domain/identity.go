package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Identity é o token opaco apresentado pelo cliente, já reconhecido.
// Nenhuma estrutura é imposta ao conteúdo.
type Identity string

// Record é o registro associado a uma identidade conhecida.
// Hoje é só um marcador; o objeto de negócio fica fora deste módulo.
type Record struct{}

// IdentitySet resolve uma credencial apresentada para uma identidade conhecida.
//
// Implementações devem permitir leitura concorrente sem bloquear.
type IdentitySet interface {
	Lookup(credential string) (Identity, bool)
}

// Fingerprint devolve um prefixo curto do sha256 da identidade, seguro para logs.
func (i Identity) Fingerprint() string {
	sum := sha256.Sum256([]byte(i))
	return hex.EncodeToString(sum[:4])
}

type identityKey struct{}

// WithIdentity anexa a identidade resolvida ao contexto da requisição.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext recupera a identidade anexada por WithIdentity.
// ok=false quando nenhuma identidade (ou uma vazia) foi anexada.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
