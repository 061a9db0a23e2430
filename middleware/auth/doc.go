// Package auth fornece o gate de identidade (net/http) que antecede o rate limit.
//
// Camadas, no mesmo desenho do pacote ratelimit:
//
//   - domain: Identity, IdentitySet e helpers de contexto
//   - application: parsing do header Bearer e resolução da identidade
//   - infra: StaticSet (snapshot imutável, troca atômica)
//   - auth (este pacote): middleware HTTP
//
// Qualquer falha (header ausente, malformado ou identidade desconhecida) vira
// exatamente a mesma resposta 401. O motivo só aparece em logs e métricas.
package auth
