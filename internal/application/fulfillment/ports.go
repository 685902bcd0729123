package fulfillment

import (
	"context"

	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// TxRunner transacción de completado de documentos: el cambio de estado del
// documento y los movimientos de stock viven en la MISMA transacción, así el
// estado nunca se confirma con un descuento a medias ni al revés.
type TxRunner interface {
	RunFulfillment(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
		salesRepo repository.SalesOrderRepository,
		stockOutRepo repository.StockOutOrderRepository,
	) error) error
}
