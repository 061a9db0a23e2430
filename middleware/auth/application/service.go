package application

import (
	"strings"

	"vault-gateway/middleware/auth/domain"
)

const bearerScheme = "bearer"

// Service resolve o header Authorization para uma identidade.
type Service struct {
	Identities domain.IdentitySet
}

// Authenticate devolve a identidade do header ou um erro que satisfaz
// errors.Is(err, domain.ErrUnauthenticated).
//
// O lookup acontece sempre, mesmo com header ausente ou malformado, para que
// os caminhos de erro tenham o mesmo custo.
func (s Service) Authenticate(header string) (domain.Identity, error) {
	credential, parseErr := ParseBearer(header)

	var (
		id    domain.Identity
		found bool
	)
	if s.Identities != nil {
		id, found = s.Identities.Lookup(credential)
	}

	if parseErr != nil {
		return "", parseErr
	}
	if !found {
		return "", domain.ErrUnknownIdentity
	}
	return id, nil
}

// ParseBearer extrai a credencial de "Bearer <credential>".
// O esquema é case-insensitive (RFC 6750); a credencial não pode ter espaços.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrMissingCredential
	}

	scheme, credential, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", domain.ErrMalformedCredential
	}

	credential = strings.TrimSpace(credential)
	if credential == "" || strings.ContainsAny(credential, " \t") {
		return "", domain.ErrMalformedCredential
	}
	return credential, nil
}
