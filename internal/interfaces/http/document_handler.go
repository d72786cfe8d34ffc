package http

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/pkg/logger"
)

// DocumentHandler maneja subida y consulta de documentos (protegido).
type DocumentHandler struct {
	uc       *document.DocumentUseCase
	log      *logger.Logger
	maxBytes int64
}

// NewDocumentHandler construye el handler. maxBytes limita el tamaño del archivo subido.
func NewDocumentHandler(uc *document.DocumentUseCase, log *logger.Logger, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{uc: uc, log: log, maxBytes: maxBytes}
}

// Create godoc
// @Summary      Subir documento
// @Tags         documents
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        title    formData  string  false  "Título"
// @Param        content  formData  string  false  "Contenido (se reemplaza por el texto extraído si el archivo es PDF)"
// @Param        file     formData  file    true   "Archivo"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /document [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	principal := GetPrincipal(c)
	if principal == nil {
		return unauthorized(c, "UNAUTHORIZED", "principal requerido")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "el campo file es requerido")
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("el archivo supera %d bytes", h.maxBytes),
		})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, fmt.Errorf("abrir multipart: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, h.log, fmt.Errorf("leer multipart: %w", err))
	}

	out, err := h.uc.CreateDocument(c.UserContext(), *principal, dto.CreateDocumentInput{
		Title:       c.FormValue("title"),
		Content:     c.FormValue("content"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos visibles
// @Description  admin ve todos los documentos; el resto solo los propios.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.DocumentResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	principal := GetPrincipal(c)
	if principal == nil {
		return unauthorized(c, "UNAUTHORIZED", "principal requerido")
	}
	list, err := h.uc.ListDocuments(c.UserContext(), *principal)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener documento por ID
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	principal := GetPrincipal(c)
	if principal == nil {
		return unauthorized(c, "UNAUTHORIZED", "principal requerido")
	}
	out, err := h.uc.GetDocument(c.UserContext(), *principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Download godoc
// @Summary      Descargar el archivo original
// @Tags         documents
// @Security     Bearer
// @Produce      octet-stream
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /documents/{id}/file [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	principal := GetPrincipal(c)
	if principal == nil {
		return unauthorized(c, "UNAUTHORIZED", "principal requerido")
	}
	rc, meta, err := h.uc.OpenFile(c.UserContext(), *principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, downloadContentType(meta.ContentType))
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderContentDisposition, attachment(meta.Filename))
	// fasthttp cierra el stream al terminar la respuesta
	return c.SendStream(rc, int(meta.SizeBytes))
}

// Export godoc
// @Summary      Exportar documento a PDF
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /documents/{id}/export [get]
func (h *DocumentHandler) Export(c *fiber.Ctx) error {
	principal := GetPrincipal(c)
	if principal == nil {
		return unauthorized(c, "UNAUTHORIZED", "principal requerido")
	}
	out, filename, err := h.uc.ExportPDF(c.UserContext(), *principal, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment(filename))
	return c.Send(out)
}

// tipos que se sirven tal cual en la descarga; el resto sale como application/octet-stream
var inlineSafeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
}

// downloadContentType no reenvía el Content-Type declarado por el cliente salvo que esté permitido.
func downloadContentType(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !inlineSafeTypes[strings.ToLower(mediaType)] {
		return fiber.MIMEOctetStream
	}
	return mediaType
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
