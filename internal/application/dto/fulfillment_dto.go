package dto

import "github.com/shopspring/decimal"

// OrderLineRequest línea de un documento: producto y cantidad pedida.
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	Code       string             `json:"code"`
	CustomerID string             `json:"customer_id,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Lines      []OrderLineRequest `json:"lines"`
}

// CreateStockOutOrderRequest body para POST /api/stockout-orders.
type CreateStockOutOrderRequest struct {
	Code   string             `json:"code"`
	Reason string             `json:"reason,omitempty"`
	Lines  []OrderLineRequest `json:"lines"`
}

// LineShortageResponse faltante de una línea al intentar completar.
type LineShortageResponse struct {
	ProductID string          `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// ShortageReportResponse reporte itemizado de un completado rechazado por
// stock insuficiente. Es un resultado de negocio esperado, no un error 500.
type ShortageReportResponse struct {
	DocumentID string                 `json:"document_id"`
	Shortages  []LineShortageResponse `json:"shortages"`
}
