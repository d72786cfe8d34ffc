package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/docs-api/internal/application/auth"
	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	DocumentUC     *document.DocumentUseCase
	Logger         *logger.Logger
	MaxUploadBytes int64
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("http")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)

	// Documentos (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.AuthUC, log)
	docHandler := NewDocumentHandler(deps.DocumentUC, log, deps.MaxUploadBytes)
	app.Post("/document", requireAuth, docHandler.Create)

	documents := app.Group("/documents", requireAuth)
	documents.Get("/", docHandler.List)
	documents.Get("/:id", docHandler.GetByID)
	documents.Get("/:id/file", docHandler.Download)
	documents.Get("/:id/export", docHandler.Export)
}
