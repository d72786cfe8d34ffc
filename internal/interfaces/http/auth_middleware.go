package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/pkg/logger"
)

// LocalPrincipal key de c.Locals donde queda el principal autenticado.
const LocalPrincipal = "principal"

// tokenValidator es el contrato mínimo que necesita el middleware. Lo implementa *auth.AuthUseCase.
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*entity.Principal, error)
}

// AuthMiddleware valida el Bearer Token y deja el principal en c.Locals.
// Falta de header, formato inválido, firma o expiración → 401 con WWW-Authenticate: Bearer.
func AuthMiddleware(validator tokenValidator, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		// fasthttp recorta los espacios finales: "Bearer   " llega como "Bearer"
		scheme, tokenString, _ := strings.Cut(authHeader, " ")
		if !strings.EqualFold(scheme, "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		principal, err := validator.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			return writeError(c, log, err)
		}
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

// GetPrincipal devuelve el principal del contexto (después del middleware de auth).
func GetPrincipal(c *fiber.Ctx) *entity.Principal {
	p, _ := c.Locals(LocalPrincipal).(*entity.Principal)
	return p
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: message})
}
