package repository

import "github.com/jhoicas/surtika-api/internal/domain/entity"

// UserRepository puerto de persistencia de usuarios (identidad del actor).
type UserRepository interface {
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
}
