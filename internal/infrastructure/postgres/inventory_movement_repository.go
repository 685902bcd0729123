package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// Tabla inventory_movements con UNIQUE (correlation_id, line_no): el libro solo
// crece y los reintentos no duplican asientos.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, correlation_id, line_no, batch_id, inventory_detail_id, type, quantity,
	delta_on_hand, delta_on_shelf, unit_cost, reason, notes, created_by, created_at`

// Append persiste un asiento. Si (correlation_id, line_no) ya existe devuelve
// el ID del asiento existente sin insertar nada (idempotencia de reintentos).
func (r *InventoryMovementRepo) Append(m *entity.InventoryMovement) (string, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	// ON CONFLICT DO NOTHING en vez de capturar 23505: una violación dentro
	// de una transacción la dejaría abortada y el camino idempotente no
	// podría consultar el asiento existente.
	query := `
		INSERT INTO inventory_movements (id, correlation_id, line_no, batch_id, inventory_detail_id, type,
			quantity, delta_on_hand, delta_on_shelf, unit_cost, reason, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (correlation_id, line_no) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		m.ID, m.CorrelationID, m.LineNo, m.BatchID, m.InventoryDetailID, m.Type,
		m.Quantity, m.DeltaOnHand, m.DeltaOnShelf, m.UnitCost, m.Reason, m.Notes,
		createdBy, m.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("append movement: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return m.ID, nil
	}
	var existingID string
	err = r.q.QueryRow(context.Background(),
		`SELECT id FROM inventory_movements WHERE correlation_id = $1 AND line_no = $2`,
		m.CorrelationID, m.LineNo,
	).Scan(&existingID)
	if err != nil {
		return "", fmt.Errorf("append movement: buscar existente: %w", err)
	}
	return existingID, nil
}

// GetByID obtiene un asiento por ID.
func (r *InventoryMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+movementColumns+` FROM inventory_movements WHERE id = $1`, id)
	m, err := scanMovementRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByBatch historial de un lote en un rango de fechas, más reciente primero.
func (r *InventoryMovementRepo) ListByBatch(batchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE batch_id = $1`
	return r.list(query, batchID, from, to, limit, offset)
}

// ListByProduct historial de todos los lotes de un producto.
func (r *InventoryMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT m.id, m.correlation_id, m.line_no, m.batch_id, m.inventory_detail_id, m.type, m.quantity,
			m.delta_on_hand, m.delta_on_shelf, m.unit_cost, m.reason, m.notes, m.created_by, m.created_at
		FROM inventory_movements m
		JOIN batches b ON b.id = m.batch_id
		WHERE b.product_id = $1`
	return r.list(query, productID, from, to, limit, offset)
}

func (r *InventoryMovementRepo) list(query, arg string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	args := []any{arg}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, line_no DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Reconcile suma firmada de los deltas del lote; debe cuadrar con su
// InventoryDetail (auditoría).
func (r *InventoryMovementRepo) Reconcile(batchID string) (decimal.Decimal, decimal.Decimal, error) {
	var dOnHand, dOnShelf decimal.Decimal
	err := r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(delta_on_hand), 0), COALESCE(SUM(delta_on_shelf), 0)
		FROM inventory_movements WHERE batch_id = $1`, batchID,
	).Scan(&dOnHand, &dOnShelf)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("reconcile batch: %w", err)
	}
	return dOnHand, dOnShelf, nil
}

func scanMovementRow(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var createdBy *string
	err := row.Scan(
		&m.ID, &m.CorrelationID, &m.LineNo, &m.BatchID, &m.InventoryDetailID, &m.Type,
		&m.Quantity, &m.DeltaOnHand, &m.DeltaOnShelf, &m.UnitCost, &m.Reason, &m.Notes,
		&createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
