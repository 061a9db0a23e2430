package infra

import (
	"crypto/sha256"
	"strings"
	"sync/atomic"

	"vault-gateway/middleware/auth/domain"
)

type digest [sha256.Size]byte

type snapshot struct {
	byDigest map[digest]domain.Identity
}

// StaticSet é o conjunto de identidades conhecidas.
//
// O mapa é indexado pelo sha256 da credencial: todo lookup custa um hash e uma
// busca, independente de a credencial existir. Leituras nunca bloqueiam;
// Replace troca o snapshot inteiro de forma atômica.
type StaticSet struct {
	snap atomic.Pointer[snapshot]
}

// NewStaticSet cria o conjunto a partir de uma lista de tokens.
// Tokens vazios (após trim) são ignorados.
func NewStaticSet(tokens []string) *StaticSet {
	s := &StaticSet{}
	s.Replace(tokens)
	return s
}

// Lookup implementa domain.IdentitySet.
func (s *StaticSet) Lookup(credential string) (domain.Identity, bool) {
	sum := sha256.Sum256([]byte(credential))
	snap := s.snap.Load()
	if snap == nil {
		return "", false
	}
	id, ok := snap.byDigest[sum]
	return id, ok
}

// Replace publica um novo snapshot. Leitores em andamento continuam vendo o anterior.
func (s *StaticSet) Replace(tokens []string) {
	next := &snapshot{byDigest: make(map[digest]domain.Identity, len(tokens))}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		next.byDigest[sha256.Sum256([]byte(tok))] = domain.Identity(tok)
	}
	s.snap.Store(next)
}

// Len devolve quantas identidades o snapshot atual contém.
func (s *StaticSet) Len() int {
	snap := s.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.byDigest)
}
