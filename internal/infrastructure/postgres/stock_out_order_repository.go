package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/surtika-api/internal/domain"
	"github.com/jhoicas/surtika-api/internal/domain/entity"
	"github.com/jhoicas/surtika-api/internal/domain/repository"
)

var _ repository.StockOutOrderRepository = (*StockOutOrderRepo)(nil)

// StockOutOrderRepo órdenes de salida administrativa sobre PostgreSQL.
// Tablas: stock_out_orders + stock_out_order_lines.
type StockOutOrderRepo struct {
	q Querier
}

// NewStockOutOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockOutOrderRepository(q Querier) *StockOutOrderRepo {
	return &StockOutOrderRepo{q: q}
}

// Create persiste la orden y sus líneas.
func (r *StockOutOrderRepo) Create(order *entity.StockOutOrder) error {
	createdBy := (*string)(nil)
	if order.CreatedBy != "" {
		createdBy = &order.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO stock_out_orders (id, code, reason, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.Code, order.Reason, order.Status, createdBy, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock out order: %w", err)
	}
	for _, line := range order.Lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO stock_out_order_lines (id, order_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)`,
			line.ID, order.ID, line.ProductID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock out order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *StockOutOrderRepo) GetByID(id string) (*entity.StockOutOrder, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE).
func (r *StockOutOrderRepo) GetForUpdate(id string) (*entity.StockOutOrder, error) {
	return r.get(id, true)
}

func (r *StockOutOrderRepo) get(id string, forUpdate bool) (*entity.StockOutOrder, error) {
	query := `
		SELECT id, code, reason, status, created_by, created_at, updated_at, completed_at
		FROM stock_out_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.StockOutOrder
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.Code, &o.Reason, &o.Status, &createdBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock out order: %w", err)
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	rows, err := r.q.Query(context.Background(), `
		SELECT id, product_id, quantity
		FROM stock_out_order_lines WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("load stock out order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock out order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus transición condicional sobre el estado esperado.
func (r *StockOutOrderRepo) UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error) {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE stock_out_orders SET status = $3, completed_at = COALESCE($4, completed_at), updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, expected, next, completedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update stock out order status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List órdenes por estado (vacío = todas), más recientes primero.
func (r *StockOutOrderRepo) List(status string, limit, offset int) ([]*entity.StockOutOrder, error) {
	query := `
		SELECT id, code, reason, status, created_by, created_at, updated_at, completed_at
		FROM stock_out_orders`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock out orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockOutOrder
	for rows.Next() {
		var o entity.StockOutOrder
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.Code, &o.Reason, &o.Status, &createdBy,
			&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan stock out order: %w", err)
		}
		if createdBy != nil {
			o.CreatedBy = *createdBy
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
