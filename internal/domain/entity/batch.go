package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	BatchStatusActive   = "active"   // asignable si tiene saldo
	BatchStatusExpired  = "expired"  // vencido por proceso programado (externo)
	BatchStatusDisposed = "disposed" // dado de baja manualmente
)

// Batch representa un lote de compra de un producto: su vencimiento, costo,
// precio y promoción son propios del lote, no del producto. Las cantidades
// físicas NO viven aquí sino en el InventoryDetail asociado.
type Batch struct {
	ID              string
	Code            string // código de lote, único
	ProductID       string
	ManufactureDate *time.Time
	ExpiryDate      *time.Time // nil = no vence; ordena de último en FEFO
	CostPrice       decimal.Decimal
	UnitPrice       decimal.Decimal
	PromotionPrice  *decimal.Decimal
	PromotionUntil  *time.Time
	Status          string // active, expired, disposed
	CreatedAt       time.Time // desempate FEFO entre lotes con igual vencimiento
	UpdatedAt       time.Time
}

// IsExpired indica si el lote ya pasó su fecha de vencimiento.
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// Allocatable indica si el lote puede participar en una asignación.
func (b *Batch) Allocatable() bool {
	return b.Status == BatchStatusActive
}

// EffectivePrice devuelve el precio vigente: promoción si aplica a la fecha, si no el precio normal.
func (b *Batch) EffectivePrice(now time.Time) decimal.Decimal {
	if b.PromotionPrice != nil && (b.PromotionUntil == nil || now.Before(*b.PromotionUntil)) {
		return *b.PromotionPrice
	}
	return b.UnitPrice
}

// BatchStock empareja un lote con su detalle de inventario (snapshot de lectura
// para el asignador FEFO).
type BatchStock struct {
	Batch  *Batch
	Detail *InventoryDetail
}
