package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/allocation"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// UseCase máquina de estados de los documentos que mueven stock (orden de
// venta, orden de salida). Solo la entrada al estado completed invoca al
// orquestador, exactamente una vez por documento; si hay faltantes la
// transición no ocurre y el caller recibe el reporte línea por línea.
type UseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	salesRepo    repository.SalesOrderRepository    // lecturas fuera de tx
	stockOutRepo repository.StockOutOrderRepository // lecturas fuera de tx
	orchestrator *inventory.MovementOrchestrator
}

// NewUseCase construye la máquina de estados. salesRepo y stockOutRepo van
// atados al pool y solo sirven lecturas; las escrituras pasan por el TxRunner.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	salesRepo repository.SalesOrderRepository,
	stockOutRepo repository.StockOutOrderRepository,
	orchestrator *inventory.MovementOrchestrator,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		salesRepo:    salesRepo,
		stockOutRepo: stockOutRepo,
		orchestrator: orchestrator,
	}
}

// GetSalesOrder lectura directa de una orden de venta.
func (uc *UseCase) GetSalesOrder(_ context.Context, id string) (*entity.SalesOrder, error) {
	order, err := uc.salesRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// GetStockOutOrder lectura directa de una orden de salida.
func (uc *UseCase) GetStockOutOrder(_ context.Context, id string) (*entity.StockOutOrder, error) {
	order, err := uc.stockOutRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ListSalesOrders lista órdenes de venta, opcionalmente filtradas por estado.
func (uc *UseCase) ListSalesOrders(_ context.Context, status string, limit, offset int) ([]*entity.SalesOrder, error) {
	if !validStatusFilter(status) {
		return nil, domain.ErrInvalidInput
	}
	return uc.salesRepo.List(status, limit, offset)
}

// ListStockOutOrders lista órdenes de salida, opcionalmente filtradas por estado.
func (uc *UseCase) ListStockOutOrders(_ context.Context, status string, limit, offset int) ([]*entity.StockOutOrder, error) {
	if !validStatusFilter(status) {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockOutRepo.List(status, limit, offset)
}

// validStatusFilter acepta vacío (sin filtro) o un estado conocido del ciclo de vida.
func validStatusFilter(s string) bool {
	switch s {
	case "", entity.OrderStatusDraft, entity.OrderStatusPending, entity.OrderStatusApproved,
		entity.OrderStatusCompleted, entity.OrderStatusCancelled:
		return true
	}
	return false
}

// LineShortage faltante de una línea: lo pedido contra lo disponible.
type LineShortage struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// ShortageReport reporte de faltantes de un intento de completado rechazado.
type ShortageReport struct {
	DocumentID string
	Shortages  []LineShortage
}

// ── Creación de documentos ────────────────────────────────────────────────────

// CreateSalesOrderInput entrada para crear una orden de venta en draft.
type CreateSalesOrderInput struct {
	Code       string
	CustomerID string
	Notes      string
	ActorID    string
	Lines      []entity.OrderLine
}

// CreateSalesOrder crea la orden en estado draft.
func (uc *UseCase) CreateSalesOrder(ctx context.Context, in CreateSalesOrderInput) (*entity.SalesOrder, error) {
	if in.Code == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	total := decimal.Zero
	for i := range in.Lines {
		if in.Lines[i].ProductID == "" || !in.Lines[i].Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if product, err := uc.productRepo.GetByID(in.Lines[i].ProductID); err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		in.Lines[i].ID = uuid.New().String()
		total = total.Add(in.Lines[i].Quantity.Mul(in.Lines[i].UnitPrice))
	}
	now := time.Now()
	order := &entity.SalesOrder{
		ID:         uuid.New().String(),
		Code:       in.Code,
		CustomerID: in.CustomerID,
		Status:     entity.OrderStatusDraft,
		Lines:      in.Lines,
		Total:      total,
		Notes:      in.Notes,
		CreatedBy:  in.ActorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.RunFulfillment(ctx, func(
		_ repository.BatchRepository,
		_ repository.InventoryMovementRepository,
		salesRepo repository.SalesOrderRepository,
		_ repository.StockOutOrderRepository,
	) error {
		return salesRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateStockOutOrderInput entrada para crear una orden de salida administrativa.
type CreateStockOutOrderInput struct {
	Code    string
	Reason  string
	ActorID string
	Lines   []entity.OrderLine
}

// CreateStockOutOrder crea la orden de salida en estado draft.
func (uc *UseCase) CreateStockOutOrder(ctx context.Context, in CreateStockOutOrderInput) (*entity.StockOutOrder, error) {
	if in.Code == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for i := range in.Lines {
		if in.Lines[i].ProductID == "" || !in.Lines[i].Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if product, err := uc.productRepo.GetByID(in.Lines[i].ProductID); err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		in.Lines[i].ID = uuid.New().String()
	}
	now := time.Now()
	order := &entity.StockOutOrder{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Reason:    in.Reason,
		Status:    entity.OrderStatusDraft,
		Lines:     in.Lines,
		CreatedBy: in.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.RunFulfillment(ctx, func(
		_ repository.BatchRepository,
		_ repository.InventoryMovementRepository,
		_ repository.SalesOrderRepository,
		stockOutRepo repository.StockOutOrderRepository,
	) error {
		return stockOutRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ── Transiciones simples ──────────────────────────────────────────────────────

// SubmitSalesOrder draft -> pending.
func (uc *UseCase) SubmitSalesOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentSales, id, entity.OrderStatusPending)
}

// ApproveSalesOrder pending -> approved.
func (uc *UseCase) ApproveSalesOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentSales, id, entity.OrderStatusApproved)
}

// CancelSalesOrder cualquier estado no terminal -> cancelled.
func (uc *UseCase) CancelSalesOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentSales, id, entity.OrderStatusCancelled)
}

// SubmitStockOutOrder draft -> pending.
func (uc *UseCase) SubmitStockOutOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentStockOut, id, entity.OrderStatusPending)
}

// ApproveStockOutOrder pending -> approved.
func (uc *UseCase) ApproveStockOutOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentStockOut, id, entity.OrderStatusApproved)
}

// CancelStockOutOrder cualquier estado no terminal -> cancelled.
func (uc *UseCase) CancelStockOutOrder(ctx context.Context, id string) error {
	return uc.transition(ctx, documentStockOut, id, entity.OrderStatusCancelled)
}

type documentKind int

const (
	documentSales documentKind = iota
	documentStockOut
)

// transition aplica una transición sin efectos de stock, validada contra la
// tabla del ciclo de vida y con UPDATE condicional sobre el estado leído.
func (uc *UseCase) transition(ctx context.Context, kind documentKind, id, next string) error {
	return uc.txRunner.RunFulfillment(ctx, func(
		_ repository.BatchRepository,
		_ repository.InventoryMovementRepository,
		salesRepo repository.SalesOrderRepository,
		stockOutRepo repository.StockOutOrderRepository,
	) error {
		var current string
		var update func(expected string) (bool, error)
		switch kind {
		case documentSales:
			order, err := salesRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}
			current = order.Status
			update = func(expected string) (bool, error) {
				return salesRepo.UpdateStatus(id, expected, next, nil)
			}
		default:
			order, err := stockOutRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}
			current = order.Status
			update = func(expected string) (bool, error) {
				return stockOutRepo.UpdateStatus(id, expected, next, nil)
			}
		}
		if !entity.CanTransition(current, next) {
			return domain.ErrInvalidTransition
		}
		ok, err := update(current)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConflict
		}
		return nil
	})
}

// ── Completado (el único camino que mueve stock) ─────────────────────────────

// CompleteSalesOrder intenta pasar la orden a completed: asigna cada línea por
// FEFO sobre estante y aplica todo como una unidad. Si alguna línea queda corta
// no se descuenta NADA y el estado no cambia; el reporte lista cada faltante.
// Repetir sobre una orden ya completada devuelve ErrAlreadyCompleted sin
// generar asientos nuevos.
func (uc *UseCase) CompleteSalesOrder(ctx context.Context, id, actorID string) (*ShortageReport, error) {
	var report *ShortageReport
	err := uc.txRunner.RunFulfillment(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
		salesRepo repository.SalesOrderRepository,
		_ repository.StockOutOrderRepository,
	) error {
		order, err := salesRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status == entity.OrderStatusCompleted {
			return domain.ErrAlreadyCompleted
		}
		if !entity.CanTransition(order.Status, entity.OrderStatusCompleted) {
			return domain.ErrInvalidTransition
		}
		if len(order.Lines) == 0 {
			return domain.ErrEmptyDocument
		}

		lines, shortages, err := uc.planLines(batchRepo, order.Lines, allocation.SourceShelf)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			report = &ShortageReport{DocumentID: id, Shortages: shortages}
			return domain.ErrInsufficientStock
		}

		_, err = uc.orchestrator.ApplyInTx(ctx, batchRepo, movRepo, inventory.ApplyInput{
			Type:          entity.MovementTypeOUT,
			Source:        inventory.DebitShelf,
			Lines:         lines,
			Reason:        "venta " + order.Code,
			ActorID:       actorID,
			CorrelationID: order.ID,
		})
		if err != nil {
			// Carrera post-asignación: el faltante descubierto al aplicar
			// también se reporta itemizado.
			var shortage *domain.ShortageError
			if errors.As(err, &shortage) {
				report = &ShortageReport{DocumentID: id, Shortages: []LineShortage{{
					ProductID: shortage.ProductID,
					Requested: shortage.Requested,
					Available: shortage.Available,
				}}}
			}
			return err
		}

		now := time.Now()
		ok, err := salesRepo.UpdateStatus(id, order.Status, entity.OrderStatusCompleted, &now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyCompleted
		}
		return nil
	})
	return report, err
}

// CompleteStockOutOrder igual que la venta, pero la salida administrativa
// asigna y debita BODEGA directamente: saca stock a granel, no el del estante.
func (uc *UseCase) CompleteStockOutOrder(ctx context.Context, id, actorID string) (*ShortageReport, error) {
	var report *ShortageReport
	err := uc.txRunner.RunFulfillment(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
		_ repository.SalesOrderRepository,
		stockOutRepo repository.StockOutOrderRepository,
	) error {
		order, err := stockOutRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Status == entity.OrderStatusCompleted {
			return domain.ErrAlreadyCompleted
		}
		if !entity.CanTransition(order.Status, entity.OrderStatusCompleted) {
			return domain.ErrInvalidTransition
		}
		if len(order.Lines) == 0 {
			return domain.ErrEmptyDocument
		}

		lines, shortages, err := uc.planLines(batchRepo, order.Lines, allocation.SourceOnHand)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			report = &ShortageReport{DocumentID: id, Shortages: shortages}
			return domain.ErrInsufficientStock
		}

		reason := "salida " + order.Code
		if order.Reason != "" {
			reason = reason + ": " + order.Reason
		}
		_, err = uc.orchestrator.ApplyInTx(ctx, batchRepo, movRepo, inventory.ApplyInput{
			Type:          entity.MovementTypeOUT,
			Source:        inventory.DebitHand,
			Lines:         lines,
			Reason:        reason,
			ActorID:       actorID,
			CorrelationID: order.ID,
		})
		if err != nil {
			var shortage *domain.ShortageError
			if errors.As(err, &shortage) {
				report = &ShortageReport{DocumentID: id, Shortages: []LineShortage{{
					ProductID: shortage.ProductID,
					Requested: shortage.Requested,
					Available: shortage.Available,
				}}}
			}
			return err
		}

		now := time.Now()
		ok, err := stockOutRepo.UpdateStatus(id, order.Status, entity.OrderStatusCompleted, &now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyCompleted
		}
		return nil
	})
	return report, err
}

// planLines resuelve cada línea del documento vía FEFO dentro de la misma
// ventana transaccional (las filas de detalle quedan bloqueadas por el listado
// elegible). Junta TODOS los faltantes en vez de cortar en el primero, para
// que el usuario vea el panorama completo.
func (uc *UseCase) planLines(batchRepo repository.BatchRepository, orderLines []entity.OrderLine, src allocation.Source) ([]inventory.ApplyLine, []LineShortage, error) {
	var lines []inventory.ApplyLine
	var shortages []LineShortage
	for _, ol := range orderLines {
		stocks, err := batchRepo.ListEligibleByProduct(ol.ProductID, string(src))
		if err != nil {
			return nil, nil, err
		}
		plan, err := allocation.Allocate(ol.ProductID, ol.Quantity, stocks, src)
		if err != nil {
			var shortage *domain.ShortageError
			if errors.As(err, &shortage) {
				shortages = append(shortages, LineShortage{
					ProductID: shortage.ProductID,
					Requested: shortage.Requested,
					Available: shortage.Available,
				})
				continue
			}
			return nil, nil, err
		}
		for _, pl := range plan.Lines {
			lines = append(lines, inventory.ApplyLine{
				BatchID:           pl.BatchID,
				InventoryDetailID: pl.InventoryDetailID,
				Quantity:          pl.Quantity,
			})
		}
	}
	return lines, shortages, nil
}
