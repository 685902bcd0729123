package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/surtika-api/internal/application/dto"
	"github.com/jhoicas/surtika-api/internal/application/fulfillment"
	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// FulfillmentHandler ciclo de vida de órdenes de venta y de salida.
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler de cumplimiento.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// ── Órdenes de venta ──────────────────────────────────────────────────────────

// CreateSalesOrder godoc
// @Summary      Crear orden de venta (draft)
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "código y líneas"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders [post]
func (h *FulfillmentHandler) CreateSalesOrder(c *fiber.Ctx) error {
	var in dto.CreateSalesOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]entity.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	order, err := h.uc.CreateSalesOrder(c.Context(), fulfillment.CreateSalesOrderInput{
		Code:       in.Code,
		CustomerID: in.CustomerID,
		Notes:      in.Notes,
		ActorID:    GetUserID(c),
		Lines:      lines,
	})
	if err != nil {
		return h.documentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(salesOrderResponse(order))
}

// ListSalesOrders godoc
// @Summary      Listar órdenes de venta
// @Tags         sales-orders
// @Produce      json
// @Param        status  query  string  false  "filtrar por estado (draft|pending|approved|completed|cancelled)"
// @Param        limit   query  int     false  "default 20, máximo 100"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders [get]
func (h *FulfillmentHandler) ListSalesOrders(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.uc.ListSalesOrders(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
		}
		return h.documentError(c, err)
	}
	items := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		items = append(items, salesOrderResponse(o))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// GetSalesOrder godoc
// @Summary      Consultar orden de venta
// @Tags         sales-orders
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders/{id} [get]
func (h *FulfillmentHandler) GetSalesOrder(c *fiber.Ctx) error {
	order, err := h.uc.GetSalesOrder(c.Context(), c.Params("id"))
	if err != nil {
		return h.documentError(c, err)
	}
	return c.JSON(salesOrderResponse(order))
}

// SubmitSalesOrder godoc
// @Summary      Enviar orden de venta (draft -> pending)
// @Tags         sales-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders/{id}/submit [post]
func (h *FulfillmentHandler) SubmitSalesOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.SubmitSalesOrder)
}

// ApproveSalesOrder godoc
// @Summary      Aprobar orden de venta (pending -> approved)
// @Tags         sales-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders/{id}/approve [post]
func (h *FulfillmentHandler) ApproveSalesOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.ApproveSalesOrder)
}

// CancelSalesOrder godoc
// @Summary      Cancelar orden de venta
// @Tags         sales-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sales-orders/{id}/cancel [post]
func (h *FulfillmentHandler) CancelSalesOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.CancelSalesOrder)
}

// CompleteSalesOrder godoc
// @Summary      Completar orden de venta (descuenta stock de estante por FEFO)
// @Tags         sales-orders
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ShortageReportResponse
// @Security     BearerAuth
// @Router       /api/sales-orders/{id}/complete [post]
func (h *FulfillmentHandler) CompleteSalesOrder(c *fiber.Ctx) error {
	report, err := h.uc.CompleteSalesOrder(c.Context(), c.Params("id"), GetUserID(c))
	return h.completeResult(c, report, err)
}

// ── Órdenes de salida ─────────────────────────────────────────────────────────

// CreateStockOutOrder godoc
// @Summary      Crear orden de salida administrativa (draft)
// @Tags         stockout-orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockOutOrderRequest  true  "código, motivo y líneas"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders [post]
func (h *FulfillmentHandler) CreateStockOutOrder(c *fiber.Ctx) error {
	var in dto.CreateStockOutOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]entity.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	order, err := h.uc.CreateStockOutOrder(c.Context(), fulfillment.CreateStockOutOrderInput{
		Code:    in.Code,
		Reason:  in.Reason,
		ActorID: GetUserID(c),
		Lines:   lines,
	})
	if err != nil {
		return h.documentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stockOutOrderResponse(order))
}

// ListStockOutOrders godoc
// @Summary      Listar órdenes de salida
// @Tags         stockout-orders
// @Produce      json
// @Param        status  query  string  false  "filtrar por estado"
// @Param        limit   query  int     false  "default 20, máximo 100"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders [get]
func (h *FulfillmentHandler) ListStockOutOrders(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.uc.ListStockOutOrders(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
		}
		return h.documentError(c, err)
	}
	items := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		items = append(items, stockOutOrderResponse(o))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// GetStockOutOrder godoc
// @Summary      Consultar orden de salida
// @Tags         stockout-orders
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders/{id} [get]
func (h *FulfillmentHandler) GetStockOutOrder(c *fiber.Ctx) error {
	order, err := h.uc.GetStockOutOrder(c.Context(), c.Params("id"))
	if err != nil {
		return h.documentError(c, err)
	}
	return c.JSON(stockOutOrderResponse(order))
}

// SubmitStockOutOrder godoc
// @Summary      Enviar orden de salida (draft -> pending)
// @Tags         stockout-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders/{id}/submit [post]
func (h *FulfillmentHandler) SubmitStockOutOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.SubmitStockOutOrder)
}

// ApproveStockOutOrder godoc
// @Summary      Aprobar orden de salida (pending -> approved)
// @Tags         stockout-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders/{id}/approve [post]
func (h *FulfillmentHandler) ApproveStockOutOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.ApproveStockOutOrder)
}

// CancelStockOutOrder godoc
// @Summary      Cancelar orden de salida
// @Tags         stockout-orders
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders/{id}/cancel [post]
func (h *FulfillmentHandler) CancelStockOutOrder(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.uc.CancelStockOutOrder)
}

// CompleteStockOutOrder godoc
// @Summary      Completar orden de salida (descuenta stock de bodega por FEFO)
// @Tags         stockout-orders
// @Produce      json
// @Param        id   path      string  true  "ID de la orden"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ShortageReportResponse
// @Security     BearerAuth
// @Router       /api/stockout-orders/{id}/complete [post]
func (h *FulfillmentHandler) CompleteStockOutOrder(c *fiber.Ctx) error {
	report, err := h.uc.CompleteStockOutOrder(c.Context(), c.Params("id"), GetUserID(c))
	return h.completeResult(c, report, err)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// simpleTransition ejecuta una transición sin efectos de stock y mapea errores.
func (h *FulfillmentHandler) simpleTransition(c *fiber.Ctx, fn func(ctx context.Context, id string) error) error {
	if err := fn(c.Context(), c.Params("id")); err != nil {
		return h.documentError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// completeResult mapea el resultado de un intento de completado.
func (h *FulfillmentHandler) completeResult(c *fiber.Ctx, report *fulfillment.ShortageReport, err error) error {
	if err == nil {
		return c.JSON(fiber.Map{"status": entity.OrderStatusCompleted})
	}
	if errors.Is(err, domain.ErrInsufficientStock) && report != nil {
		out := dto.ShortageReportResponse{DocumentID: report.DocumentID}
		for _, s := range report.Shortages {
			out.Shortages = append(out.Shortages, dto.LineShortageResponse{
				ProductID: s.ProductID,
				Requested: s.Requested,
				Available: s.Available,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(out)
	}
	if errors.Is(err, domain.ErrAlreadyCompleted) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_COMPLETED", Message: "la orden ya fue completada"})
	}
	if errors.Is(err, domain.ErrEmptyDocument) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_DOCUMENT", Message: "la orden no tiene líneas"})
	}
	return h.documentError(c, err)
}

// documentError mapea errores comunes de documentos.
func (h *FulfillmentHandler) documentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "código y líneas con cantidades positivas son requeridos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el recurso no existe"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CODE", Message: "ya existe una orden con ese código"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el estado cambió durante la operación, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func salesOrderResponse(o *entity.SalesOrder) fiber.Map {
	lines := make([]fiber.Map, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, fiber.Map{
			"id":         l.ID,
			"product_id": l.ProductID,
			"quantity":   l.Quantity,
			"unit_price": l.UnitPrice,
		})
	}
	return fiber.Map{
		"id":           o.ID,
		"code":         o.Code,
		"customer_id":  o.CustomerID,
		"status":       o.Status,
		"lines":        lines,
		"total":        o.Total,
		"notes":        o.Notes,
		"created_at":   o.CreatedAt,
		"completed_at": o.CompletedAt,
	}
}

func stockOutOrderResponse(o *entity.StockOutOrder) fiber.Map {
	lines := make([]fiber.Map, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, fiber.Map{
			"id":         l.ID,
			"product_id": l.ProductID,
			"quantity":   l.Quantity,
		})
	}
	return fiber.Map{
		"id":           o.ID,
		"code":         o.Code,
		"reason":       o.Reason,
		"status":       o.Status,
		"lines":        lines,
		"created_at":   o.CreatedAt,
		"completed_at": o.CompletedAt,
	}
}
