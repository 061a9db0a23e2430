// Package infra contém implementações concretas dos contratos de domain.IdentitySet.
//
//   - StaticSet: snapshot imutável carregado da configuração, trocado atomicamente
package infra
