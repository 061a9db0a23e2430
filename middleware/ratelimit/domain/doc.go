// Package domain define o bucket de janela fixa, a decisão de admissão e os
// contratos (tabela, relógio, stats, vagas) que a infra implementa.
//
// Não depende de net/http: o tempo entra por Clock, então as regras de janela
// são testadas sem dormir.
package domain
