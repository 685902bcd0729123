package repository

import (
	"time"

	"github.com/jhoicas/surtika-api/internal/domain/entity"
)

// SalesOrderRepository puerto de persistencia de órdenes de venta.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	GetByID(id string) (*entity.SalesOrder, error)
	// GetForUpdate bloquea la fila del documento (SELECT FOR UPDATE) dentro de
	// la transacción de completado.
	GetForUpdate(id string) (*entity.SalesOrder, error)
	// UpdateStatus cambia el estado solo si el actual coincide con expected
	// (UPDATE condicional). Devuelve false si no se afectó ninguna fila, lo que
	// garantiza descuento de stock como máximo una vez por documento.
	UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error)
	List(status string, limit, offset int) ([]*entity.SalesOrder, error)
}

// StockOutOrderRepository puerto de persistencia de órdenes de salida administrativa.
type StockOutOrderRepository interface {
	Create(order *entity.StockOutOrder) error
	GetByID(id string) (*entity.StockOutOrder, error)
	GetForUpdate(id string) (*entity.StockOutOrder, error)
	UpdateStatus(id, expected, next string, completedAt *time.Time) (bool, error)
	List(status string, limit, offset int) ([]*entity.StockOutOrder, error)
}
