// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - BucketTable: janela fixa por identidade, com expiração ativa por timer
//   - TimerRegistry: timers de expiração canceláveis no shutdown
//   - Semaphore: vagas de concorrência sobre um channel bufferizado
//   - *StatsStore: estatísticas de decisão em memória, Redis ou Prometheus
package infra
