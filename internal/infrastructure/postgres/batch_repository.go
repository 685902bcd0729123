package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo registro de lotes sobre PostgreSQL (usable con pool o tx).
// Tablas: batches (atributos del lote) e inventory_details (saldos).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, code, product_id, manufacture_date, expiry_date, cost_price, unit_price,
	promotion_price, promotion_until, status, created_at, updated_at`

const detailColumns = `id, batch_id, quantity_on_hand, quantity_on_shelf, quantity_reserved, updated_at`

// Create persiste el lote y su detalle de inventario en cero (una fila cada uno).
func (r *BatchRepo) Create(batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (id, code, product_id, manufacture_date, expiry_date, cost_price, unit_price,
			promotion_price, promotion_until, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.Code, batch.ProductID, batch.ManufactureDate, batch.ExpiryDate,
		batch.CostPrice, batch.UnitPrice, batch.PromotionPrice, batch.PromotionUntil,
		batch.Status, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	_, err = r.q.Exec(context.Background(), `
		INSERT INTO inventory_details (id, batch_id, quantity_on_hand, quantity_on_shelf, quantity_reserved, updated_at)
		VALUES ($1, $2, 0, 0, 0, now())`,
		uuid.New().String(), batch.ID,
	)
	if err != nil {
		return fmt.Errorf("insert inventory detail: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.getBatch(`SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

// GetByCode obtiene un lote por código.
func (r *BatchRepo) GetByCode(code string) (*entity.Batch, error) {
	return r.getBatch(`SELECT `+batchColumns+` FROM batches WHERE code = $1`, code)
}

func (r *BatchRepo) getBatch(query, arg string) (*entity.Batch, error) {
	var b entity.Batch
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&b.ID, &b.Code, &b.ProductID, &b.ManufactureDate, &b.ExpiryDate, &b.CostPrice, &b.UnitPrice,
		&b.PromotionPrice, &b.PromotionUntil, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// UpdateStatus cambia el estado del lote (active, expired, disposed).
func (r *BatchRepo) UpdateStatus(id, status string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE batches SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

// availableColumn mapea la fuente de asignación a su columna. Lista blanca:
// el nombre entra al SQL por concatenación.
func availableColumn(source string) (string, error) {
	switch source {
	case "on_hand":
		return "quantity_on_hand", nil
	case "shelf", "":
		return "quantity_on_shelf", nil
	default:
		return "", domain.ErrInvalidInput
	}
}

// ListEligibleByProduct lotes asignables de un producto: status active y saldo
// positivo en la fuente pedida. Dentro de una transacción el FOR UPDATE
// bloquea las filas de detalle hasta el commit, achicando la ventana de
// carrera entre la lectura del asignador y el débito.
func (r *BatchRepo) ListEligibleByProduct(productID, source string) ([]entity.BatchStock, error) {
	col, err := availableColumn(source)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT b.id, b.code, b.product_id, b.manufacture_date, b.expiry_date, b.cost_price, b.unit_price,
			b.promotion_price, b.promotion_until, b.status, b.created_at, b.updated_at,
			d.id, d.batch_id, d.quantity_on_hand, d.quantity_on_shelf, d.quantity_reserved, d.updated_at
		FROM batches b
		JOIN inventory_details d ON d.batch_id = b.id
		WHERE b.product_id = $1 AND b.status = $2 AND d.` + col + ` > 0
		ORDER BY b.expiry_date ASC NULLS LAST, b.created_at ASC, b.code ASC
		FOR UPDATE OF d`
	rows, err := r.q.Query(context.Background(), query, productID, entity.BatchStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list eligible batches: %w", err)
	}
	defer rows.Close()

	var list []entity.BatchStock
	for rows.Next() {
		var b entity.Batch
		var d entity.InventoryDetail
		if err := rows.Scan(
			&b.ID, &b.Code, &b.ProductID, &b.ManufactureDate, &b.ExpiryDate, &b.CostPrice, &b.UnitPrice,
			&b.PromotionPrice, &b.PromotionUntil, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&d.ID, &d.BatchID, &d.QuantityOnHand, &d.QuantityOnShelf, &d.QuantityReserved, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan eligible batch: %w", err)
		}
		list = append(list, entity.BatchStock{Batch: &b, Detail: &d})
	}
	return list, rows.Err()
}

// GetDetail obtiene el detalle de inventario de un lote.
func (r *BatchRepo) GetDetail(batchID string) (*entity.InventoryDetail, error) {
	return r.getDetail(`SELECT `+detailColumns+` FROM inventory_details WHERE batch_id = $1`, batchID)
}

// GetDetailForUpdate obtiene el detalle y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetDetailForUpdate(batchID string) (*entity.InventoryDetail, error) {
	return r.getDetail(`SELECT `+detailColumns+` FROM inventory_details WHERE batch_id = $1 FOR UPDATE`, batchID)
}

func (r *BatchRepo) getDetail(query, batchID string) (*entity.InventoryDetail, error) {
	var d entity.InventoryDetail
	err := r.q.QueryRow(context.Background(), query, batchID).Scan(
		&d.ID, &d.BatchID, &d.QuantityOnHand, &d.QuantityOnShelf, &d.QuantityReserved, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("get inventory detail: %w", err)
	}
	return &d, nil
}

// AdjustBalances único camino de escritura a los saldos: UN update condicional
// atómico. El WHERE exige que ambos campos queden >= 0, así dos débitos
// concurrentes sobre el mismo lote nunca pueden sobregirar aunque ambos hayan
// leído saldo suficiente (el segundo no matchea ninguna fila).
func (r *BatchRepo) AdjustBalances(batchID string, deltaOnHand, deltaOnShelf decimal.Decimal) (*entity.InventoryDetail, error) {
	query := `
		UPDATE inventory_details
		SET quantity_on_hand = quantity_on_hand + $2,
			quantity_on_shelf = quantity_on_shelf + $3,
			updated_at = now()
		WHERE batch_id = $1
			AND quantity_on_hand + $2 >= 0
			AND quantity_on_shelf + $3 >= 0
		RETURNING ` + detailColumns
	var d entity.InventoryDetail
	err := r.q.QueryRow(context.Background(), query, batchID, deltaOnHand, deltaOnShelf).Scan(
		&d.ID, &d.BatchID, &d.QuantityOnHand, &d.QuantityOnShelf, &d.QuantityReserved, &d.UpdatedAt,
	)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust balances: %w", err)
	}
	// Cero filas: distinguir lote inexistente de underflow.
	var exists bool
	if err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM inventory_details WHERE batch_id = $1)`, batchID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("adjust balances: verificar lote: %w", err)
	}
	if !exists {
		return nil, domain.ErrBatchNotFound
	}
	return nil, domain.ErrNegativeBalance
}
