package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// RegisterBatchUseCase da de alta un lote recibido: crea el lote con su detalle
// en cero y, si viene cantidad inicial, acredita bodega vía el orquestador (IN)
// en la misma transacción. Es la frontera con recepción/compras, que queda
// fuera de este núcleo.
type RegisterBatchUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	orchestrator *MovementOrchestrator
}

// NewRegisterBatchUseCase construye el caso de uso.
func NewRegisterBatchUseCase(txRunner TxRunner, productRepo repository.ProductRepository, orchestrator *MovementOrchestrator) *RegisterBatchUseCase {
	return &RegisterBatchUseCase{txRunner: txRunner, productRepo: productRepo, orchestrator: orchestrator}
}

// RegisterBatchInput datos del lote a registrar.
type RegisterBatchInput struct {
	Code            string
	ProductID       string
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	CostPrice       decimal.Decimal
	UnitPrice       decimal.Decimal
	InitialOnHand   decimal.Decimal // opcional; > 0 genera movimiento IN
	Reason          string
	ActorID         string
}

// RegisterBatch valida, crea lote + detalle y acredita la cantidad inicial.
func (uc *RegisterBatchUseCase) RegisterBatch(ctx context.Context, in RegisterBatchInput) (*entity.Batch, error) {
	if in.Code == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CostPrice.LessThan(decimal.Zero) || in.UnitPrice.LessThan(decimal.Zero) || in.InitialOnHand.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	batch := &entity.Batch{
		ID:              uuid.New().String(),
		Code:            in.Code,
		ProductID:       in.ProductID,
		ManufactureDate: in.ManufactureDate,
		ExpiryDate:      in.ExpiryDate,
		CostPrice:       in.CostPrice,
		UnitPrice:       in.UnitPrice,
		Status:          entity.BatchStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		if err := batchRepo.Create(batch); err != nil {
			return err
		}
		if !in.InitialOnHand.GreaterThan(decimal.Zero) {
			return nil
		}
		reason := in.Reason
		if reason == "" {
			reason = "recepción de lote " + batch.Code
		}
		_, err := uc.orchestrator.ApplyInTx(ctx, batchRepo, movRepo, ApplyInput{
			Type:          entity.MovementTypeIN,
			Lines:         []ApplyLine{{BatchID: batch.ID, Quantity: in.InitialOnHand}},
			Reason:        reason,
			ActorID:       in.ActorID,
			CorrelationID: batch.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// DisposeBatch da de baja un lote: lo excluye de futuras asignaciones.
// No toca saldos; la merma asociada se registra aparte como AUDIT.
func (uc *RegisterBatchUseCase) DisposeBatch(ctx context.Context, batchID string) error {
	return uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.InventoryMovementRepository,
	) error {
		batch, err := batchRepo.GetByID(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrBatchNotFound
		}
		if batch.Status == entity.BatchStatusDisposed {
			return domain.ErrConflict
		}
		return batchRepo.UpdateStatus(batchID, entity.BatchStatusDisposed)
	})
}
