package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// DebitSource de qué saldo se debita un OUT. La regla es un parámetro explícito
// del caller (la venta debita estante, la baja administrativa debita bodega),
// nunca se decide por call site.
type DebitSource string

const (
	DebitShelf         DebitSource = "shelf"
	DebitShelfThenHand DebitSource = "shelf_then_hand"
	DebitHand          DebitSource = "hand"
)

// ApplyLine una línea del plan a aplicar sobre un lote.
// Para ADJUSTMENT/AUDIT la cantidad es firmada y Target elige el campo.
type ApplyLine struct {
	BatchID           string
	InventoryDetailID string // opcional; si viene, debe corresponder al lote
	Quantity          decimal.Decimal
	Target            string // entity.TargetOnHand | entity.TargetOnShelf
}

// ApplyInput entrada de una aplicación de movimientos: uno o más débitos o
// créditos del mismo tipo, con razón de auditoría y actor.
type ApplyInput struct {
	Type          string // entity.MovementTypeIN, OUT, ADJUSTMENT, TRANSFER, AUDIT
	Source        DebitSource
	Lines         []ApplyLine
	Reason        string
	Notes         string
	ActorID       string // vacío = movimiento de sistema
	CorrelationID string // idempotencia de reintentos; vacío = se genera
}

// LineOutcome resultado por línea para que el caller decida reintentar o abortar.
type LineOutcome struct {
	LineNo     int
	BatchID    string
	Applied    bool
	MovementID string
	Err        error
}

// ApplyResult reporte estructurado de una aplicación.
type ApplyResult struct {
	CorrelationID string
	Lines         []LineOutcome
}

// MovementOrchestrator aplica planes de asignación: muta saldos del registro de
// lotes y agrega asientos al libro, todo dentro de UNA transacción. Es el único
// componente que escribe InventoryDetail y el único que crea asientos.
type MovementOrchestrator struct {
	txRunner TxRunner
}

// NewMovementOrchestrator construye el orquestador.
func NewMovementOrchestrator(txRunner TxRunner) *MovementOrchestrator {
	return &MovementOrchestrator{txRunner: txRunner}
}

// Apply ejecuta el plan en una transacción propia. Si alguna línea falla la
// transacción se revierte completa: no existe estado parcialmente aplicado
// observable por otros procesos.
func (o *MovementOrchestrator) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	var result *ApplyResult
	err := o.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		var innerErr error
		result, innerErr = o.ApplyInTx(ctx, batchRepo, movRepo, in)
		return innerErr
	})
	return result, err
}

// ApplyInTx ejecuta el plan usando repositorios ya atados a la transacción del
// caller (la máquina de estados de cumplimiento completa documento y stock en
// la misma tx). Los asientos del libro se difieren hasta que TODOS los ajustes
// de saldo de la llamada hayan pasado, y se agregan en el orden de las líneas.
func (o *MovementOrchestrator) ApplyInTx(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
	in ApplyInput,
) (*ApplyResult, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	result := &ApplyResult{CorrelationID: in.CorrelationID}
	now := time.Now()
	pending := make([]*entity.InventoryMovement, 0, len(in.Lines))

	for i, line := range in.Lines {
		outcome := LineOutcome{LineNo: i, BatchID: line.BatchID}

		batch, err := batchRepo.GetByID(line.BatchID)
		if err == nil && batch == nil {
			err = domain.ErrBatchNotFound
		}
		if err != nil {
			outcome.Err = err
			result.Lines = append(result.Lines, outcome)
			return result, err
		}

		// Bloquea el detalle: el split estante->bodega y la verificación de
		// pareja lote/detalle necesitan una lectura estable dentro de la tx.
		detail, err := batchRepo.GetDetailForUpdate(line.BatchID)
		if err != nil {
			outcome.Err = err
			result.Lines = append(result.Lines, outcome)
			return result, err
		}
		if line.InventoryDetailID != "" && line.InventoryDetailID != detail.ID {
			outcome.Err = domain.ErrBatchMismatch
			result.Lines = append(result.Lines, outcome)
			return result, domain.ErrBatchMismatch
		}

		dOnHand, dOnShelf := lineDeltas(in.Type, in.Source, line, detail)

		if _, err := batchRepo.AdjustBalances(line.BatchID, dOnHand, dOnShelf); err != nil {
			if errors.Is(err, domain.ErrNegativeBalance) && in.Type == entity.MovementTypeOUT {
				// Carrera contra la lectura del asignador: traducir a faltante
				// con lo realmente disponible para que el caller lo reporte.
				err = &domain.ShortageError{
					ProductID: batch.ProductID,
					Requested: line.Quantity,
					Available: availableFor(in.Source, detail),
				}
			}
			outcome.Err = err
			result.Lines = append(result.Lines, outcome)
			return result, err
		}

		pending = append(pending, &entity.InventoryMovement{
			CorrelationID:     in.CorrelationID,
			LineNo:            i,
			BatchID:           line.BatchID,
			InventoryDetailID: detail.ID,
			Type:              in.Type,
			Quantity:          signedQuantity(in.Type, line.Quantity),
			DeltaOnHand:       dOnHand,
			DeltaOnShelf:      dOnShelf,
			UnitCost:          batch.CostPrice,
			Reason:            in.Reason,
			Notes:             in.Notes,
			CreatedBy:         in.ActorID,
			CreatedAt:         now,
		})
		outcome.Applied = true
		result.Lines = append(result.Lines, outcome)
	}

	// Todos los saldos pasaron: recién ahora se escriben los asientos, en el
	// mismo orden de las líneas del plan (reconstrucción de auditoría).
	for i, mov := range pending {
		id, err := movRepo.Append(mov)
		if err != nil {
			result.Lines[i].Applied = false
			result.Lines[i].Err = err
			return result, err
		}
		result.Lines[i].MovementID = id
	}
	return result, nil
}

// validateInput normaliza y valida la entrada; genera CorrelationID si falta.
func validateInput(in *ApplyInput) error {
	if len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	if in.CorrelationID == "" {
		in.CorrelationID = uuid.New().String()
	}
	switch in.Type {
	case entity.MovementTypeIN:
		for _, l := range in.Lines {
			if !l.Quantity.GreaterThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
		}
	case entity.MovementTypeOUT:
		switch in.Source {
		case DebitShelf, DebitShelfThenHand, DebitHand:
		default:
			return domain.ErrInvalidInput
		}
		for _, l := range in.Lines {
			if !l.Quantity.GreaterThan(decimal.Zero) {
				return domain.ErrInvalidInput
			}
		}
	case entity.MovementTypeTRANSFER:
		for _, l := range in.Lines {
			if l.Quantity.IsZero() {
				return domain.ErrInvalidInput
			}
		}
	case entity.MovementTypeADJUSTMENT, entity.MovementTypeAUDIT:
		for _, l := range in.Lines {
			if l.Quantity.IsZero() {
				return domain.ErrInvalidInput
			}
			if l.Target != entity.TargetOnHand && l.Target != entity.TargetOnShelf {
				return domain.ErrInvalidInput
			}
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// lineDeltas traduce (tipo, fuente, línea) a deltas firmados sobre bodega/estante.
func lineDeltas(movType string, source DebitSource, line ApplyLine, detail *entity.InventoryDetail) (dOnHand, dOnShelf decimal.Decimal) {
	q := line.Quantity
	switch movType {
	case entity.MovementTypeIN:
		// Lo recibido entra a bodega; pasar a estante es un TRANSFER aparte.
		return q, decimal.Zero
	case entity.MovementTypeOUT:
		switch source {
		case DebitHand:
			return q.Neg(), decimal.Zero
		case DebitShelfThenHand:
			fromShelf := decimal.Min(q, detail.QuantityOnShelf)
			return q.Sub(fromShelf).Neg(), fromShelf.Neg()
		default: // DebitShelf
			return decimal.Zero, q.Neg()
		}
	case entity.MovementTypeTRANSFER:
		// q > 0: bodega -> estante; q < 0: estante -> bodega. La suma es invariante.
		return q.Neg(), q
	default: // ADJUSTMENT, AUDIT
		if line.Target == entity.TargetOnHand {
			return q, decimal.Zero
		}
		return decimal.Zero, q
	}
}

// availableFor saldo visible para la fuente de débito (reporte de faltante).
func availableFor(source DebitSource, detail *entity.InventoryDetail) decimal.Decimal {
	switch source {
	case DebitHand:
		return detail.QuantityOnHand
	case DebitShelfThenHand:
		return detail.Total()
	default:
		return detail.QuantityOnShelf
	}
}

// signedQuantity magnitud firmada del asiento según el tipo.
func signedQuantity(movType string, q decimal.Decimal) decimal.Decimal {
	if movType == entity.MovementTypeOUT {
		return q.Neg()
	}
	return q
}
