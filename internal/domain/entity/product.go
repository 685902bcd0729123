package entity

import "time"

// Product identidad de catálogo de un SKU. El catálogo es dueño de estos datos;
// el motor de inventario solo los lee (las cantidades viven por lote en InventoryDetail).
type Product struct {
	ID          string
	Code        string // código único
	Name        string
	Description string
	UnitMeasure string // unidad de medida (und, caja, kg, ...)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
