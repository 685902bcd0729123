package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryDetail saldo físico de un lote, separado entre bodega y estante.
// Invariante tras cada mutación: QuantityOnHand >= 0 y QuantityOnShelf >= 0.
// Solo el orquestador de movimientos escribe estos campos, vía el mutador
// condicional del registro de lotes; nunca por setters directos.
type InventoryDetail struct {
	ID               string
	BatchID          string
	QuantityOnHand   decimal.Decimal // en bodega, no vendible hasta pasar a estante
	QuantityOnShelf  decimal.Decimal // disponible para venta inmediata
	QuantityReserved decimal.Decimal // retenido contra pedidos sin confirmar
	UpdatedAt        time.Time
}

// Total stock físico del lote (bodega + estante).
func (d *InventoryDetail) Total() decimal.Decimal {
	return d.QuantityOnHand.Add(d.QuantityOnShelf)
}
