// Package allocation implementa el asignador FEFO (First-Expired-First-Out):
// dado un producto y una cantidad, decide de qué lotes tomarla. Es un servicio
// de dominio puro: no escribe nada y para el mismo snapshot del registro de
// lotes devuelve siempre el mismo plan.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// Source indica de qué saldo del lote se asigna.
type Source string

const (
	// SourceShelf asigna del estante (ventas).
	SourceShelf Source = "shelf"
	// SourceOnHand asigna de bodega (salidas administrativas).
	SourceOnHand Source = "on_hand"
)

// PlanLine una toma concreta: cantidad a debitar de un lote.
type PlanLine struct {
	BatchID           string
	InventoryDetailID string
	BatchCode         string
	Quantity          decimal.Decimal
	UnitCost          decimal.Decimal
}

// Plan resultado de una asignación: tomas ordenadas por urgencia de vencimiento
// que suman exactamente la cantidad pedida.
type Plan struct {
	ProductID string
	Requested decimal.Decimal
	Lines     []PlanLine
}

// available devuelve el saldo asignable del lote según la fuente.
func available(d *entity.InventoryDetail, src Source) decimal.Decimal {
	if src == SourceOnHand {
		return d.QuantityOnHand
	}
	return d.QuantityOnShelf
}

// Allocate arma el plan FEFO para requested unidades de un producto sobre el
// snapshot stocks. Orden: vencimiento ascendente, lotes sin vencimiento al
// final (se tratan como "infinito", los menos urgentes); desempate por fecha
// de creación del lote y luego código, para que el plan sea determinista.
// Si el stock elegible no alcanza devuelve *domain.ShortageError con lo
// máximo satisfacible.
func Allocate(productID string, requested decimal.Decimal, stocks []entity.BatchStock, src Source) (*Plan, error) {
	if !requested.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	eligible := make([]entity.BatchStock, 0, len(stocks))
	for _, s := range stocks {
		if s.Batch == nil || s.Detail == nil || !s.Batch.Allocatable() {
			continue
		}
		if available(s.Detail, src).GreaterThan(decimal.Zero) {
			eligible = append(eligible, s)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Batch, eligible[j].Batch
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			// ambos sin vencimiento: por antigüedad del lote
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Code < b.Code
	})

	plan := &Plan{ProductID: productID, Requested: requested}
	remaining := requested
	for _, s := range eligible {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(remaining, available(s.Detail, src))
		plan.Lines = append(plan.Lines, PlanLine{
			BatchID:           s.Batch.ID,
			InventoryDetailID: s.Detail.ID,
			BatchCode:         s.Batch.Code,
			Quantity:          take,
			UnitCost:          s.Batch.CostPrice,
		})
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, &domain.ShortageError{
			ProductID: productID,
			Requested: requested,
			Available: requested.Sub(remaining),
		}
	}
	return plan, nil
}
