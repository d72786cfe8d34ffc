package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/domain/repository"
	"github.com/jhoicas/docs-api/pkg/logger"
	"github.com/jhoicas/docs-api/pkg/metrics"
)

// DocumentUseCase pipeline de subida (blob → extracción → registro) y consultas con control de acceso.
//
// El blob y el registro no se escriben en una misma transacción: si el proceso cae entre ambos
// pasos queda un blob huérfano. Ante un error controlado se intenta borrar el blob y se registra
// un warning con la clave.
type DocumentUseCase struct {
	docs      repository.DocumentRepository
	blobs     BlobStore
	extractor TextExtractor
	renderer  DocumentRenderer
	log       *logger.Logger
	metrics   *metrics.Collector

	newID func() string
	now   func() time.Time
}

// NewDocumentUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentUseCase(
	docs repository.DocumentRepository,
	blobs BlobStore,
	extractor TextExtractor,
	renderer DocumentRenderer,
	log *logger.Logger,
	m *metrics.Collector,
) *DocumentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentUseCase{
		docs:      docs,
		blobs:     blobs,
		extractor: extractor,
		renderer:  renderer,
		log:       log.Named("documents"),
		metrics:   m,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateDocument guarda el archivo, extrae el texto si es PDF y persiste el registro.
// PostedBy y Role se toman del principal autenticado.
//
// Retorna:
//   - domain.ErrInvalidFilename  si el nombre del archivo no es seguro.
//   - domain.ErrExtraction       si el PDF no se pudo leer.
func (uc *DocumentUseCase) CreateDocument(ctx context.Context, p entity.Principal, in dto.CreateDocumentInput) (*dto.DocumentResponse, error) {
	start := time.Now()
	kind := "raw"
	filename, err := SanitizeFilename(in.Filename)
	if err != nil {
		uc.log.Warn().Str("username", p.Username).Str("filename", in.Filename).Msg("nombre de archivo rechazado")
		return nil, err
	}
	if IsPDF(filename) {
		kind = "pdf"
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// ── 1. Blob ───────────────────────────────────────────────────────────────
	id := uc.newID()
	key := StorageKey(id, filename)
	if err := uc.blobs.Put(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), contentType); err != nil {
		uc.metrics.ObserveUpload(kind, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("guardar archivo: %w", err)
	}

	// ── 2. Contenido ──────────────────────────────────────────────────────────
	content := in.Content
	if kind == "pdf" {
		content, err = uc.extractText(ctx, in.Data)
		if err != nil {
			uc.discardBlob(ctx, key, err)
			uc.metrics.ObserveUpload(kind, "extraction_error", time.Since(start).Seconds())
			return nil, err
		}
	}

	// ── 3. Registro ───────────────────────────────────────────────────────────
	doc := &entity.Document{
		ID:          id,
		Title:       in.Title,
		Content:     content,
		PostedBy:    p.Username,
		Role:        p.Role,
		Filename:    filename,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   int64(len(in.Data)),
		CreatedAt:   uc.now(),
	}
	if err := uc.docs.Create(ctx, doc); err != nil {
		uc.discardBlob(ctx, key, err)
		uc.metrics.ObserveUpload(kind, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("guardar documento: %w", err)
	}

	uc.metrics.ObserveUpload(kind, "ok", time.Since(start).Seconds())
	uc.log.Info().
		Str("id", doc.ID).
		Str("username", p.Username).
		Str("kind", kind).
		Int64("size", doc.SizeBytes).
		Msg("documento creado")
	return toDocumentResponse(doc), nil
}

// extractText concatena el texto de cada página seguido de un salto de línea.
func (uc *DocumentUseCase) extractText(ctx context.Context, data []byte) (string, error) {
	pages, err := uc.extractor.ExtractPages(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// discardBlob borra el blob de una subida fallida. Si el borrado falla el blob queda huérfano.
func (uc *DocumentUseCase) discardBlob(ctx context.Context, key string, cause error) {
	if err := uc.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		uc.log.Warn().Err(err).AnErr("cause", cause).Str("storage_key", key).Msg("blob huérfano")
	}
}

// ListDocuments devuelve todos los documentos para admin y solo los propios para el resto.
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, p entity.Principal) ([]dto.DocumentResponse, error) {
	filter := repository.DocumentFilter{}
	if !p.IsAdmin() {
		filter.PostedBy = p.Username
	}
	list, err := uc.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		if !d.VisibleTo(p) {
			continue
		}
		items = append(items, *toDocumentResponse(d))
	}
	return items, nil
}

// GetDocument devuelve un documento visible para el principal.
// Un documento ajeno se reporta como domain.ErrNotFound para no revelar su existencia.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, p entity.Principal, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc), nil
}

// OpenFile abre los bytes originales de un documento visible. El caller cierra el reader.
func (uc *DocumentUseCase) OpenFile(ctx context.Context, p entity.Principal, id string) (io.ReadCloser, *dto.DocumentResponse, error) {
	doc, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("id", id).Str("storage_key", doc.StorageKey).Msg("registro sin blob")
		}
		return nil, nil, fmt.Errorf("abrir archivo: %w", err)
	}
	return rc, toDocumentResponse(doc), nil
}

// ExportPDF genera el PDF de un documento visible y el nombre de descarga sugerido.
func (uc *DocumentUseCase) ExportPDF(ctx context.Context, p entity.Principal, id string) ([]byte, string, error) {
	doc, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, "", err
	}
	out, err := uc.renderer.RenderDocumentPDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("exportar documento: %w", err)
	}
	return out, fmt.Sprintf("documento_%s.pdf", doc.ID), nil
}

// visible resuelve un documento para el principal. Un id que no es UUID no puede existir
// (los IDs se generan con uuid.NewString) y se reporta como domain.ErrNotFound sin consultar el store.
func (uc *DocumentUseCase) visible(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if !doc.VisibleTo(p) {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	return &dto.DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		Content:     d.Content,
		PostedBy:    d.PostedBy,
		Role:        d.Role,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		CreatedAt:   d.CreatedAt,
	}
}
