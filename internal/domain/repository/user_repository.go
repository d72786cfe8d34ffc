package repository

import (
	"context"

	"github.com/jhoicas/docs-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para credenciales (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrConflict si el username ya existe.
	Create(ctx context.Context, user *entity.User) error
	// GetByUsername devuelve domain.ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
