package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/surtika-api/internal/application/auth"
	"github.com/jhoicas/surtika-api/internal/application/fulfillment"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterBatch *inventory.RegisterBatchUseCase
	Queries       *inventory.QueryUseCase
	Orchestrator  *inventory.MovementOrchestrator
	Fulfillment   *fulfillment.UseCase
	AuthUC        *auth.AuthUseCase
	KardexGen     *pdf.KardexPDFGenerator
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solo admin y bodeguero tocan stock; vendedor consulta y opera ventas.
	warehouseOnly := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Batches (protegido)
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.RegisterBatch, deps.Queries)
	batches.Post("/", warehouseOnly, batchHandler.Register)
	batches.Get("/:id/balance", batchHandler.GetBalance)
	batches.Get("/:id/reconcile", batchHandler.Reconcile)
	batches.Post("/:id/dispose", warehouseOnly, batchHandler.Dispose)

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Orchestrator, deps.Queries, deps.KardexGen)
	invGroup.Post("/adjustments", warehouseOnly, inventoryHandler.Adjust)
	invGroup.Post("/restock", warehouseOnly, inventoryHandler.Restock)
	invGroup.Post("/receipts", warehouseOnly, inventoryHandler.Receipt)
	invGroup.Get("/movements/batch/:id", inventoryHandler.MovementsByBatch)
	invGroup.Get("/movements/product/:id", inventoryHandler.MovementsByProduct)
	invGroup.Post("/allocation-preview", inventoryHandler.PreviewAllocation)
	invGroup.Get("/kardex/:id", inventoryHandler.Kardex)

	// Sales orders (protegido)
	sales := protected.Group("/sales-orders")
	fulfillmentHandler := NewFulfillmentHandler(deps.Fulfillment)
	sales.Post("/", fulfillmentHandler.CreateSalesOrder)
	sales.Get("/", fulfillmentHandler.ListSalesOrders)
	sales.Get("/:id", fulfillmentHandler.GetSalesOrder)
	sales.Post("/:id/submit", fulfillmentHandler.SubmitSalesOrder)
	sales.Post("/:id/approve", fulfillmentHandler.ApproveSalesOrder)
	sales.Post("/:id/cancel", fulfillmentHandler.CancelSalesOrder)
	sales.Post("/:id/complete", fulfillmentHandler.CompleteSalesOrder)

	// Stock-out orders (protegido; solo bodega)
	stockOut := protected.Group("/stockout-orders", warehouseOnly)
	stockOut.Post("/", fulfillmentHandler.CreateStockOutOrder)
	stockOut.Get("/", fulfillmentHandler.ListStockOutOrders)
	stockOut.Get("/:id", fulfillmentHandler.GetStockOutOrder)
	stockOut.Post("/:id/submit", fulfillmentHandler.SubmitStockOutOrder)
	stockOut.Post("/:id/approve", fulfillmentHandler.ApproveStockOutOrder)
	stockOut.Post("/:id/cancel", fulfillmentHandler.CancelStockOutOrder)
	stockOut.Post("/:id/complete", fulfillmentHandler.CompleteStockOutOrder)
}
