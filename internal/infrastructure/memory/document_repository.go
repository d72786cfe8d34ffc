package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos append-only en orden de inserción.
type DocumentRepo struct {
	mu   sync.RWMutex
	docs []entity.Document
}

// NewDocumentRepository construye el repositorio vacío.
func NewDocumentRepository() *DocumentRepo {
	return &DocumentRepo{}
}

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == doc.ID {
			return domain.ErrConflict
		}
	}
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.docs {
		if r.docs[i].ID == id {
			d := r.docs[i]
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *DocumentRepo) List(_ context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Document, 0, len(r.docs))
	for i := range r.docs {
		if filter.PostedBy != "" && r.docs[i].PostedBy != filter.PostedBy {
			continue
		}
		d := r.docs[i]
		out = append(out, &d)
	}
	return out, nil
}
