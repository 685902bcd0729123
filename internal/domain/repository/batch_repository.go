package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// BatchRepository puerto del registro de lotes: atributos del lote y su saldo.
// AdjustBalances es el ÚNICO camino de escritura a InventoryDetail y debe ser
// un update condicional atómico ("decrementa solo si el resultado queda >= 0"):
// dos débitos concurrentes sobre el mismo lote nunca pueden sobregirar.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	GetByCode(code string) (*entity.Batch, error)
	UpdateStatus(id, status string) error

	// ListEligibleByProduct lotes asignables: status active y saldo > 0 en la
	// fuente indicada ("shelf" u "on_hand"). Dentro de una transacción la
	// implementación bloquea las filas de detalle (FOR UPDATE).
	ListEligibleByProduct(productID, source string) ([]entity.BatchStock, error)

	GetDetail(batchID string) (*entity.InventoryDetail, error)
	GetDetailForUpdate(batchID string) (*entity.InventoryDetail, error)

	// AdjustBalances aplica deltas firmados a bodega/estante en un solo update
	// condicional. Devuelve el detalle resultante; domain.ErrNegativeBalance si
	// algún campo quedaría negativo, domain.ErrBatchNotFound si el lote no existe.
	AdjustBalances(batchID string, deltaOnHand, deltaOnShelf decimal.Decimal) (*entity.InventoryDetail, error)
}
