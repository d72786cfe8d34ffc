package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/pkg/logger"
)

// errorMapping traduce un error de dominio a status HTTP y cuerpo de error.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{domain.ErrConflict, fiber.StatusBadRequest, "USERNAME_TAKEN", "el username ya está registrado"},
	{domain.ErrInvalidCredentials, fiber.StatusBadRequest, "INVALID_CREDENTIALS", "usuario o password incorrectos"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado"},
	{domain.ErrExtraction, fiber.StatusUnprocessableEntity, "EXTRACTION_FAILED", "no se pudo extraer el texto del PDF"},
	{domain.ErrInvalidFilename, fiber.StatusBadRequest, "INVALID_FILENAME", "nombre de archivo inválido"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "documento no encontrado"},
}

// writeError responde con el status correspondiente al error. Los mensajes son genéricos;
// solo ErrInvalidInput expone el detalle de validación. Errores no mapeados → 500 y log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		if m.status == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
