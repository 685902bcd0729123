package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBatchNotFound     = errors.New("lote no encontrado")
	ErrBatchMismatch     = errors.New("lote y detalle de inventario no corresponden")
	ErrNegativeBalance   = errors.New("el saldo resultante sería negativo")
	ErrAlreadyCompleted  = errors.New("documento ya completado")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrEmptyDocument     = errors.New("documento sin líneas")
)

// ShortageError indica que el stock elegible no alcanza la cantidad pedida.
// Available es lo máximo satisfacible con el snapshot consultado; la política
// (rechazar todo o entregar parcial) es del caller, no del asignador.
type ShortageError struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: pedido %s, disponible %s",
		e.ProductID, e.Requested.String(), e.Available.String())
}

// Is permite errors.Is(err, ErrInsufficientStock) sobre un ShortageError.
func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}
