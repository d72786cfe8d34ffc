// Package memory implementa los puertos de persistencia en memoria de proceso.
// Se usa con STORE_DRIVER=memory (desarrollo local) y en los tests de aplicación y HTTP.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo credenciales indexadas por username.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

// NewUserRepository construye el repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{users: make(map[string]entity.User)}
}

// Create inserta el usuario; la comprobación de unicidad y la escritura ocurren bajo el mismo lock.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrConflict
	}
	r.users[user.Username] = *user
	return nil
}

// GetByUsername devuelve una copia del registro.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// Delete elimina un usuario. Solo lo usan los tests para simular una baja externa.
func (r *UserRepo) Delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}
