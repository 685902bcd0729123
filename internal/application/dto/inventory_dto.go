package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterBatchRequest body para POST /api/batches.
type RegisterBatchRequest struct {
	Code            string           `json:"code"`
	ProductID       string           `json:"product_id"`
	ManufactureDate *time.Time       `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	CostPrice       decimal.Decimal  `json:"cost_price"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	InitialOnHand   decimal.Decimal  `json:"initial_on_hand"`
	Reason          string           `json:"reason,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments (ajuste manual o
// conteo de auditoría). Bypassa el asignador: el caller indica lote y campo.
type AdjustmentRequest struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"` // firmada
	Target   string          `json:"target"`   // on_hand | on_shelf
	Audit    bool            `json:"audit"`    // true = asiento AUDIT (conteo/merma)
	Reason   string          `json:"reason"`
	Notes    string          `json:"notes,omitempty"`
}

// RestockRequest body para POST /api/inventory/restock: TRANSFER entre bodega y
// estante del mismo lote (positivo = a estante, negativo = a bodega).
type RestockRequest struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason,omitempty"`
}

// ReceiptRequest body para POST /api/inventory/receipts: entrada a bodega de un
// lote ya registrado.
type ReceiptRequest struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason,omitempty"`
}

// AllocationPreviewRequest body para POST /api/inventory/allocation-preview.
type AllocationPreviewRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Source    string          `json:"source,omitempty"` // shelf (default) | on_hand
}

// AllocationPreviewLine una toma del plan FEFO.
type AllocationPreviewLine struct {
	BatchID   string          `json:"batch_id"`
	BatchCode string          `json:"batch_code"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// AllocationPreviewResponse plan FEFO sin aplicar.
type AllocationPreviewResponse struct {
	ProductID string                  `json:"product_id"`
	Requested decimal.Decimal         `json:"requested"`
	Lines     []AllocationPreviewLine `json:"lines"`
}

// BatchBalanceResponse saldo actual de un lote.
type BatchBalanceResponse struct {
	BatchID          string          `json:"batch_id"`
	Code             string          `json:"code"`
	ProductID        string          `json:"product_id"`
	Status           string          `json:"status"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Expired          bool            `json:"expired"`
	EffectivePrice   decimal.Decimal `json:"effective_price"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	QuantityOnShelf  decimal.Decimal `json:"quantity_on_shelf"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	Total            decimal.Decimal `json:"total"`
}

// MovementResponse asiento del libro para listados.
type MovementResponse struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlation_id"`
	LineNo        int             `json:"line_no"`
	BatchID       string          `json:"batch_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	DeltaOnHand   decimal.Decimal `json:"delta_on_hand"`
	DeltaOnShelf  decimal.Decimal `json:"delta_on_shelf"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Reason        string          `json:"reason"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ReconcileResponse cruce libro contra saldo vigente.
type ReconcileResponse struct {
	BatchID        string          `json:"batch_id"`
	LedgerOnHand   decimal.Decimal `json:"ledger_on_hand"`
	LedgerOnShelf  decimal.Decimal `json:"ledger_on_shelf"`
	BalanceOnHand  decimal.Decimal `json:"balance_on_hand"`
	BalanceOnShelf decimal.Decimal `json:"balance_on_shelf"`
	Consistent     bool            `json:"consistent"`
}
