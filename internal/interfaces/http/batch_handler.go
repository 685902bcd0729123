package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/surtika-api/internal/application/dto"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain"
)

// BatchHandler alta, baja y lecturas del registro de lotes.
type BatchHandler struct {
	register *inventory.RegisterBatchUseCase
	queries  *inventory.QueryUseCase
}

// NewBatchHandler construye el handler de lotes.
func NewBatchHandler(register *inventory.RegisterBatchUseCase, queries *inventory.QueryUseCase) *BatchHandler {
	return &BatchHandler{register: register, queries: queries}
}

// Register godoc
// @Summary      Registrar lote recibido
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterBatchRequest  true  "lote a registrar"
// @Success      201   {object}  dto.BatchBalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/batches [post]
func (h *BatchHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.register.RegisterBatch(c.Context(), inventory.RegisterBatchInput{
		Code:            in.Code,
		ProductID:       in.ProductID,
		ManufactureDate: in.ManufactureDate,
		ExpiryDate:      in.ExpiryDate,
		CostPrice:       in.CostPrice,
		UnitPrice:       in.UnitPrice,
		InitialOnHand:   in.InitialOnHand,
		Reason:          in.Reason,
		ActorID:         GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code, product_id y montos no negativos son requeridos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "el producto no existe"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CODE", Message: "ya existe un lote con ese código"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          batch.ID,
		"code":        batch.Code,
		"product_id":  batch.ProductID,
		"status":      batch.Status,
		"expiry_date": batch.ExpiryDate,
		"created_at":  batch.CreatedAt,
	})
}

// GetBalance godoc
// @Summary      Saldo actual de un lote
// @Tags         batches
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.BatchBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/batches/{id}/balance [get]
func (h *BatchHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.queries.GetBatchBalance(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: "el lote no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	now := time.Now()
	return c.JSON(dto.BatchBalanceResponse{
		BatchID:          balance.Batch.ID,
		Code:             balance.Batch.Code,
		ProductID:        balance.Batch.ProductID,
		Status:           balance.Batch.Status,
		ExpiryDate:       balance.Batch.ExpiryDate,
		Expired:          balance.Batch.IsExpired(now),
		EffectivePrice:   balance.Batch.EffectivePrice(now),
		QuantityOnHand:   balance.Detail.QuantityOnHand,
		QuantityOnShelf:  balance.Detail.QuantityOnShelf,
		QuantityReserved: balance.Detail.QuantityReserved,
		Total:            balance.Detail.Total(),
	})
}

// Reconcile godoc
// @Summary      Conciliar libro contra saldo vigente
// @Tags         batches
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/batches/{id}/reconcile [get]
func (h *BatchHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.queries.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: "el lote no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ReconcileResponse{
		BatchID:        report.BatchID,
		LedgerOnHand:   report.LedgerOnHand,
		LedgerOnShelf:  report.LedgerOnShelf,
		BalanceOnHand:  report.BalanceOnHand,
		BalanceOnShelf: report.BalanceOnShelf,
		Consistent:     report.Consistent,
	})
}

// Dispose godoc
// @Summary      Dar de baja un lote
// @Tags         batches
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/batches/{id}/dispose [post]
func (h *BatchHandler) Dispose(c *fiber.Ctx) error {
	err := h.register.DisposeBatch(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "BATCH_NOT_FOUND", Message: "el lote no existe"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DISPOSED", Message: "el lote ya fue dado de baja"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
