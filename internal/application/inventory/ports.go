package inventory

import (
	"context"

	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza el todo-o-nada del orquestador:
// cualquier línea que falle revierte los saldos ya aplicados y ningún asiento
// del libro queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
