package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/allocation"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// QueryUseCase lecturas del núcleo para reporting/UI: saldos, historial del
// libro, conciliación y vista previa de asignación. Nunca escribe ni dispara
// asignaciones reales; usa repositorios atados al pool, no a una tx.
type QueryUseCase struct {
	batchRepo   repository.BatchRepository
	movRepo     repository.InventoryMovementRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de lecturas.
func NewQueryUseCase(
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) *QueryUseCase {
	return &QueryUseCase{batchRepo: batchRepo, movRepo: movRepo, productRepo: productRepo}
}

// BatchBalance saldo actual de un lote con sus atributos.
type BatchBalance struct {
	Batch  *entity.Batch
	Detail *entity.InventoryDetail
}

// GetBatchBalance devuelve lote + detalle.
func (uc *QueryUseCase) GetBatchBalance(_ context.Context, batchID string) (*BatchBalance, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrBatchNotFound
	}
	detail, err := uc.batchRepo.GetDetail(batchID)
	if err != nil {
		return nil, err
	}
	return &BatchBalance{Batch: batch, Detail: detail}, nil
}

// ListMovementsByBatch historial del libro para un lote.
func (uc *QueryUseCase) ListMovementsByBatch(_ context.Context, batchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return uc.movRepo.ListByBatch(batchID, from, to, limit, offset)
}

// ListMovementsByProduct historial del libro para un producto (todos sus lotes).
func (uc *QueryUseCase) ListMovementsByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return uc.movRepo.ListByProduct(productID, from, to, limit, offset)
}

// ReconcileReport cruce entre el libro y el saldo vigente de un lote.
type ReconcileReport struct {
	BatchID        string
	LedgerOnHand   decimal.Decimal
	LedgerOnShelf  decimal.Decimal
	BalanceOnHand  decimal.Decimal
	BalanceOnShelf decimal.Decimal
	Consistent     bool
}

// Reconcile compara la suma firmada de asientos contra el InventoryDetail.
// Una discrepancia indica corrupción: algo escribió saldos sin pasar por el
// orquestador.
func (uc *QueryUseCase) Reconcile(_ context.Context, batchID string) (*ReconcileReport, error) {
	detail, err := uc.batchRepo.GetDetail(batchID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.ErrBatchNotFound
	}
	sumOnHand, sumOnShelf, err := uc.movRepo.Reconcile(batchID)
	if err != nil {
		return nil, err
	}
	return &ReconcileReport{
		BatchID:        batchID,
		LedgerOnHand:   sumOnHand,
		LedgerOnShelf:  sumOnShelf,
		BalanceOnHand:  detail.QuantityOnHand,
		BalanceOnShelf: detail.QuantityOnShelf,
		Consistent:     sumOnHand.Equal(detail.QuantityOnHand) && sumOnShelf.Equal(detail.QuantityOnShelf),
	}, nil
}

// KardexData datos para el kardex de un producto: el producto, sus asientos en
// el rango y el mapa batch_id -> código de lote para mostrar códigos legibles.
type KardexData struct {
	Product    *entity.Product
	Movements  []*entity.InventoryMovement
	BatchCodes map[string]string
}

// Kardex arma los datos del kardex de un producto.
func (uc *QueryUseCase) Kardex(_ context.Context, productID string, from, to *time.Time, limit, offset int) (*KardexData, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movRepo.ListByProduct(productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string)
	for _, mv := range movements {
		if _, ok := codes[mv.BatchID]; ok {
			continue
		}
		batch, err := uc.batchRepo.GetByID(mv.BatchID)
		if err != nil {
			return nil, err
		}
		if batch != nil {
			codes[mv.BatchID] = batch.Code
		}
	}
	return &KardexData{Product: product, Movements: movements, BatchCodes: codes}, nil
}

// PreviewAllocation arma el plan FEFO sin aplicar nada. El asignador es puro:
// se puede llamar cuantas veces se quiera con el mismo resultado para el mismo
// snapshot.
func (uc *QueryUseCase) PreviewAllocation(_ context.Context, productID string, quantity decimal.Decimal, source allocation.Source) (*allocation.Plan, error) {
	stocks, err := uc.batchRepo.ListEligibleByProduct(productID, string(source))
	if err != nil {
		return nil, err
	}
	return allocation.Allocate(productID, quantity, stocks, source)
}
