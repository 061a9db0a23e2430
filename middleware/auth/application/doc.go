// Package application contém o caso de uso de autenticação: extrair a credencial
// Bearer e resolvê-la contra o conjunto de identidades conhecidas.
//
// Não conhece net/http; recebe o valor cru do header Authorization.
package application
