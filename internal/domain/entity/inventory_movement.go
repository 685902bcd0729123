package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada a bodega
	MovementTypeOUT        = "OUT"        // salida (venta o baja administrativa)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual
	MovementTypeTRANSFER   = "TRANSFER"   // bodega <-> estante del mismo lote
	MovementTypeAUDIT      = "AUDIT"      // conteo físico / merma
)

// Campos objetivo para ajustes y auditorías.
const (
	TargetOnHand  = "on_hand"
	TargetOnShelf = "on_shelf"
)

// InventoryMovement asiento inmutable del libro de movimientos: cada cambio de
// saldo de un lote queda registrado aquí, solo por el orquestador. La suma de
// DeltaOnHand/DeltaOnShelf de un lote debe cuadrar con su InventoryDetail en
// todo momento. (CorrelationID, LineNo) es único: reintentos del orquestador
// no duplican asientos.
type InventoryMovement struct {
	ID                string
	CorrelationID     string // id del apply() o documento que originó el asiento
	LineNo            int
	BatchID           string
	InventoryDetailID string
	Type              string          // IN, OUT, ADJUSTMENT, TRANSFER, AUDIT
	Quantity          decimal.Decimal // magnitud firmada del movimiento
	DeltaOnHand       decimal.Decimal
	DeltaOnShelf      decimal.Decimal
	UnitCost          decimal.Decimal // costo del lote al momento del asiento
	Reason            string          // texto libre para auditoría; la lógica usa Type, nunca esto
	Notes             string
	CreatedBy         string // UserID; vacío = movimiento de sistema
	CreatedAt         time.Time
}
