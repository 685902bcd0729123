package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de documentos que mueven stock.
// completed y cancelled son terminales; solo la entrada a completed descuenta stock.
const (
	OrderStatusDraft     = "draft"
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OrderLine línea de un documento: cantidad pedida de un producto.
// La resolución a lotes concretos la hace el asignador FEFO al completar.
type OrderLine struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// SalesOrder orden de venta: al completarse descuenta stock de estante (FEFO).
type SalesOrder struct {
	ID          string
	Code        string
	CustomerID  string
	Status      string
	Lines       []OrderLine
	Total       decimal.Decimal
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// StockOutOrder orden de salida administrativa (no venta): al completarse
// descuenta directamente de bodega, sin pasar por estante.
type StockOutOrder struct {
	ID          string
	Code        string
	Reason      string
	Status      string
	Lines       []OrderLine
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// validTransitions tabla de transiciones permitidas entre estados.
var validTransitions = map[string][]string{
	OrderStatusDraft:    {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:  {OrderStatusApproved, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusApproved: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition indica si el paso from -> to está permitido por el ciclo de vida.
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus indica si un estado no admite más transiciones.
func IsTerminalStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}
