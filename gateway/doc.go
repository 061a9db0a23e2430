// Package gateway monta a tabela de rotas: request id → gate de identidade →
// rate limit da rota → handler.
//
// O gate só cobre rotas registradas; um path desconhecido recebe 404 sem
// passar pela autenticação.
package gateway
