package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// InventoryMovementRepository puerto del libro de movimientos (append-only).
// Los asientos nunca se mutan ni se borran por flujo normal.
type InventoryMovementRepository interface {
	// Append persiste un asiento. Idempotente por (CorrelationID, LineNo): un
	// reintento con la misma clave devuelve el ID del asiento ya existente
	// sin duplicar registro.
	Append(m *entity.InventoryMovement) (string, error)

	GetByID(id string) (*entity.InventoryMovement, error)
	ListByBatch(batchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)

	// Reconcile suma los deltas firmados de todos los asientos de un lote.
	// Debe cuadrar con el InventoryDetail vigente (auditoría/tests).
	Reconcile(batchID string) (deltaOnHand, deltaOnShelf decimal.Decimal, err error)
}
