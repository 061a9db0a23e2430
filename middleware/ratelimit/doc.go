// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (admit/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (tabela de buckets, timers, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. O gate de auth anexa a identidade ao contexto
//  2. Middleware chama a camada application para obter a decisão da rota
//  3. Se bloqueado, responde 429 com Retry-After (rate limit) ou 503 (concorrência)
//  4. Se permitido, chama o próximo handler (ex: reverse proxy)
//
// Cada rota tem a sua própria BucketTable: orçamentos não são compartilhados
// entre rotas. Quem cria a tabela é responsável por chamar Close no shutdown.
package ratelimit
