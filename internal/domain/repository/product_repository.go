package repository

import "github.com/jhoicas/surtika-api/internal/domain/entity"

// ProductRepository puerto de lectura del catálogo. El catálogo es un
// colaborador externo: el motor de inventario nunca escribe productos.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
}
