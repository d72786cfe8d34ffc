package document

import (
	"context"
	"io"

	"github.com/jhoicas/docs-api/internal/domain/entity"
)

// BlobStore puerto de salida para los bytes crudos de los archivos subidos.
// Las claves las genera el pipeline; nunca provienen del cliente.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor extrae el texto de cada página de un PDF, en orden.
type TextExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// DocumentRenderer genera la representación PDF de un documento ya almacenado.
type DocumentRenderer interface {
	RenderDocumentPDF(ctx context.Context, doc *entity.Document) ([]byte, error)
}
