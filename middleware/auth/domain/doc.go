// Package domain define os tipos de identidade usados pelo gate de autenticação.
//
// Assim como o domínio do rate limit, não depende de net/http: a identidade
// resolvida viaja pelo context.Context da requisição.
package domain
