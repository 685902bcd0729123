package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/surtika-api/internal/application/dto"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/allocation"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/infrastructure/pdf"
)

// InventoryHandler movimientos manuales, historial del libro, vista previa de
// asignación y exportación de kardex.
type InventoryHandler struct {
	orchestrator *inventory.MovementOrchestrator
	queries      *inventory.QueryUseCase
	kardexGen    *pdf.KardexPDFGenerator
}

// NewInventoryHandler construye el handler de inventario.
func NewInventoryHandler(orchestrator *inventory.MovementOrchestrator, queries *inventory.QueryUseCase, kardexGen *pdf.KardexPDFGenerator) *InventoryHandler {
	return &InventoryHandler{orchestrator: orchestrator, queries: queries, kardexGen: kardexGen}
}

// Adjust godoc
// @Summary      Ajuste manual o conteo de auditoría sobre un lote
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "ajuste firmado sobre bodega o estante"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason es requerido en ajustes"})
	}
	movType := entity.MovementTypeADJUSTMENT
	if in.Audit {
		movType = entity.MovementTypeAUDIT
	}
	result, err := h.orchestrator.Apply(c.Context(), inventory.ApplyInput{
		Type:    movType,
		Lines:   []inventory.ApplyLine{{BatchID: in.BatchID, Quantity: in.Quantity, Target: in.Target}},
		Reason:  in.Reason,
		Notes:   in.Notes,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return h.applyError(c, err)
	}
	return c.JSON(applyResponse(result))
}

// Restock godoc
// @Summary      Reposición bodega <-> estante de un lote
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "cantidad positiva = a estante, negativa = a bodega"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/inventory/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason := in.Reason
	if reason == "" {
		reason = "reposición de estante"
	}
	result, err := h.orchestrator.Apply(c.Context(), inventory.ApplyInput{
		Type:    entity.MovementTypeTRANSFER,
		Lines:   []inventory.ApplyLine{{BatchID: in.BatchID, Quantity: in.Quantity}},
		Reason:  reason,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return h.applyError(c, err)
	}
	return c.JSON(applyResponse(result))
}

// Receipt godoc
// @Summary      Entrada a bodega de un lote ya registrado
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "cantidad a acreditar en bodega"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason := in.Reason
	if reason == "" {
		reason = "entrada a bodega"
	}
	result, err := h.orchestrator.Apply(c.Context(), inventory.ApplyInput{
		Type:    entity.MovementTypeIN,
		Lines:   []inventory.ApplyLine{{BatchID: in.BatchID, Quantity: in.Quantity}},
		Reason:  reason,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return h.applyError(c, err)
	}
	return c.JSON(applyResponse(result))
}

// MovementsByBatch godoc
// @Summary      Historial del libro para un lote
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        from    query  string  false  "fecha inicial (RFC3339 o YYYY-MM-DD)"
// @Param        to      query  string  false  "fecha final"
// @Param        limit   query  int     false  "default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}  dto.MovementResponse
// @Security     BearerAuth
// @Router       /api/inventory/movements/batch/{id} [get]
func (h *InventoryHandler) MovementsByBatch(c *fiber.Ctx) error {
	from, to, limit, offset, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas inválidas (RFC3339 o YYYY-MM-DD)"})
	}
	movements, err := h.queries.ListMovementsByBatch(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(movementResponses(movements))
}

// MovementsByProduct godoc
// @Summary      Historial del libro para un producto (todos sus lotes)
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "fecha inicial"
// @Param        to      query  string  false  "fecha final"
// @Param        limit   query  int     false  "default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}  dto.MovementResponse
// @Security     BearerAuth
// @Router       /api/inventory/movements/product/{id} [get]
func (h *InventoryHandler) MovementsByProduct(c *fiber.Ctx) error {
	from, to, limit, offset, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas inválidas (RFC3339 o YYYY-MM-DD)"})
	}
	movements, err := h.queries.ListMovementsByProduct(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(movementResponses(movements))
}

// PreviewAllocation godoc
// @Summary      Vista previa del plan FEFO sin aplicar
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocationPreviewRequest  true  "producto, cantidad y fuente"
// @Success      200   {object}  dto.AllocationPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/inventory/allocation-preview [post]
func (h *InventoryHandler) PreviewAllocation(c *fiber.Ctx) error {
	var in dto.AllocationPreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	source := allocation.SourceShelf
	if in.Source == string(allocation.SourceOnHand) {
		source = allocation.SourceOnHand
	}
	plan, err := h.queries.PreviewAllocation(c.Context(), in.ProductID, in.Quantity, source)
	if err != nil {
		var shortage *domain.ShortageError
		if errors.As(err, &shortage) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"code":       "INSUFFICIENT_STOCK",
				"product_id": shortage.ProductID,
				"requested":  shortage.Requested,
				"available":  shortage.Available,
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cantidad debe ser positiva"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.AllocationPreviewResponse{ProductID: plan.ProductID, Requested: plan.Requested}
	for _, l := range plan.Lines {
		out.Lines = append(out.Lines, dto.AllocationPreviewLine{
			BatchID:   l.BatchID,
			BatchCode: l.BatchCode,
			Quantity:  l.Quantity,
		})
	}
	return c.JSON(out)
}

// Kardex godoc
// @Summary      Exportar kardex de producto en PDF
// @Tags         inventory
// @Produce      application/pdf
// @Param        id    path   string  true   "ID del producto"
// @Param        from  query  string  false  "fecha inicial"
// @Param        to    query  string  false  "fecha final"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/inventory/kardex/{id} [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	from, to, limit, offset, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fechas inválidas (RFC3339 o YYYY-MM-DD)"})
	}
	data, err := h.queries.Kardex(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "el producto no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	bytes, err := h.kardexGen.GenerateKardexPDF(c.Context(), data.Product, data.Movements, data.BatchCodes, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_ERROR", Message: err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="kardex-`+data.Product.Code+`.pdf"`)
	return c.Send(bytes)
}

// applyError mapea los errores del orquestador a respuestas HTTP.
func (h *InventoryHandler) applyError(c *fiber.Ctx, err error) error {
	var shortage *domain.ShortageError
	switch {
	case errors.As(err, &shortage):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":       "INSUFFICIENT_STOCK",
			"product_id": shortage.ProductID,
			"requested":  shortage.Requested,
			"available":  shortage.Available,
		})
	case errors.Is(err, domain.ErrBatchNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: "el lote no existe"})
	case errors.Is(err, domain.ErrBatchMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BATCH_MISMATCH", Message: "el detalle no corresponde al lote"})
	case errors.Is(err, domain.ErrNegativeBalance):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_BALANCE", Message: "el movimiento dejaría un saldo negativo"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "movimiento inválido"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// applyResponse arma la respuesta de una aplicación exitosa.
func applyResponse(result *inventory.ApplyResult) fiber.Map {
	movementIDs := make([]string, 0, len(result.Lines))
	for _, l := range result.Lines {
		movementIDs = append(movementIDs, l.MovementID)
	}
	return fiber.Map{
		"correlation_id": result.CorrelationID,
		"movement_ids":   movementIDs,
	}
}

func movementResponses(movements []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			CorrelationID: m.CorrelationID,
			LineNo:        m.LineNo,
			BatchID:       m.BatchID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			DeltaOnHand:   m.DeltaOnHand,
			DeltaOnShelf:  m.DeltaOnShelf,
			UnitCost:      m.UnitCost,
			Reason:        m.Reason,
			Notes:         m.Notes,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}

// parseListQuery lee from/to/limit/offset de la query string.
func parseListQuery(c *fiber.Ctx) (from, to *time.Time, limit, offset int, err error) {
	limit = c.QueryInt("limit", 50)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if s := c.Query("from"); s != "" {
		t, perr := parseDate(s)
		if perr != nil {
			return nil, nil, 0, 0, perr
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, perr := parseDate(s)
		if perr != nil {
			return nil, nil, 0, 0, perr
		}
		to = &t
	}
	return from, to, limit, offset, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
