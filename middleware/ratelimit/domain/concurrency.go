package domain

import "context"

// SlotPool limita quantos requests ficam em voo ao mesmo tempo.
//
// Acquire espera por uma vaga até o ctx encerrar; ok=false significa que o
// request deve ser rejeitado. O release devolve a vaga.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
}
