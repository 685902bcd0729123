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

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo órdenes de venta sobre PostgreSQL (usable con pool o tx).
// Tablas: sales_orders + sales_order_lines.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create persiste la orden y sus líneas.
func (r *SalesOrderRepo) Create(order *entity.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (id, code, customer_id, status, total, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if order.CreatedBy != "" {
		createdBy = &order.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Code, order.CustomerID, order.Status, order.Total, order.Notes,
		createdBy, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	for _, line := range order.Lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO sales_order_lines (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			line.ID, order.ID, line.ProductID, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert sales order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *SalesOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE).
func (r *SalesOrderRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	return r.get(id, true)
}

func (r *SalesOrderRepo) get(id string, forUpdate bool) (*entity.SalesOrder, error) {
	query := `
		SELECT id, code, customer_id, status, total, notes, created_by, created_at, updated_at, completed_at
		FROM sales_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.SalesOrder
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.Code, &o.CustomerID, &o.Status, &o.Total, &o.Notes,
		&createdBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	lines, err := r.loadLines(o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *SalesOrderRepo) loadLines(orderID string) ([]entity.OrderLine, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, product_id, quantity, unit_price
		FROM sales_order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load sales order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sales order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpdateStatus transición condicional: solo escribe si el estado actual es el
// esperado. Cero filas afectadas = otro proceso ganó la carrera.
func (r *SalesOrderRepo) UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error) {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE sales_orders SET status = $3, completed_at = COALESCE($4, completed_at), updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, expected, next, completedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update sales order status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List órdenes por estado (vacío = todas), más recientes primero.
func (r *SalesOrderRepo) List(status string, limit, offset int) ([]*entity.SalesOrder, error) {
	query := `
		SELECT id, code, customer_id, status, total, notes, created_by, created_at, updated_at, completed_at
		FROM sales_orders`
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
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesOrder
	for rows.Next() {
		var o entity.SalesOrder
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.Code, &o.CustomerID, &o.Status, &o.Total, &o.Notes,
			&createdBy, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		if createdBy != nil {
			o.CreatedBy = *createdBy
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
