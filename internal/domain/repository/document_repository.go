package repository

import (
	"context"

	"github.com/jhoicas/docs-api/internal/domain/entity"
)

// DocumentFilter restringe un listado. PostedBy vacío significa sin filtro (vista admin).
type DocumentFilter struct {
	PostedBy string
}

// DocumentRepository define el puerto de persistencia para Document (append-only).
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID devuelve domain.ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// List devuelve los documentos en orden de inserción.
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
}
