// Package application liga a identidade do contexto à tabela de buckets da rota
// (Service.Admit) e aplica timeout na aquisição de vagas (ConcurrencyService).
package application
