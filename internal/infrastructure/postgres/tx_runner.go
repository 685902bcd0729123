package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/surtika-api/internal/application/fulfillment"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and fulfillment.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ fulfillment.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. El Rollback
// diferido es la compensación del orquestador: ninguna línea aplicada sobrevive
// a una falla posterior de la misma llamada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewBatchRepository(tx), NewInventoryMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunFulfillment transacción de completado de documentos: cambio de estado y
// movimientos de stock con los mismos repos transaccionales.
func (r *TxRunner) RunFulfillment(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.InventoryMovementRepository,
	salesRepo repository.SalesOrderRepository,
	stockOutRepo repository.StockOutOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewBatchRepository(tx),
		NewInventoryMovementRepository(tx),
		NewSalesOrderRepository(tx),
		NewStockOutOrderRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
