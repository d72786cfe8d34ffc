package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/docs-api/internal/application/auth"
	"github.com/jhoicas/docs-api/internal/application/document"
	"github.com/jhoicas/docs-api/internal/domain/repository"
	"github.com/jhoicas/docs-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/docs-api/internal/infrastructure/pdf"
	"github.com/jhoicas/docs-api/internal/infrastructure/postgres"
	"github.com/jhoicas/docs-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/docs-api/internal/interfaces/http"
	"github.com/jhoicas/docs-api/pkg/config"
	"github.com/jhoicas/docs-api/pkg/jwt"
	"github.com/jhoicas/docs-api/pkg/logger"
	"github.com/jhoicas/docs-api/pkg/metrics"
	"github.com/jhoicas/docs-api/pkg/password"
)

// margen para campos de texto y cabeceras del multipart por encima del archivo
const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Str("storage", cfg.Storage.Provider).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("arranque")
	}
	log.Info().Msg("aplicación detenida")
}

// run arma las dependencias y sirve HTTP hasta recibir SIGINT/SIGTERM.
// Los recursos abiertos se liberan con defer antes de volver.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()
	collector := metrics.New("docs_api")

	// ── Persistencia ──────────────────────────────────────────────────────────
	var (
		userRepo repository.UserRepository
		docRepo  repository.DocumentRepository
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		userRepo = memory.NewUserRepository()
		docRepo = memory.NewDocumentRepository()
	default:
		if cfg.DB.Migrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Named("migrate")); err != nil {
				return fmt.Errorf("migraciones: %w", err)
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		userRepo = postgres.NewUserRepository(pool)
		docRepo = postgres.NewDocumentRepository(pool)
	}

	// ── Blob storage ──────────────────────────────────────────────────────────
	var blobs document.BlobStore
	switch cfg.Storage.Provider {
	case config.StorageS3:
		s3, err := storage.NewS3Store(ctx, cfg.Storage.S3)
		if err != nil {
			return fmt.Errorf("conexión a S3: %w", err)
		}
		blobs = s3
	default:
		local, err := storage.NewLocalStore(cfg.Storage.UploadDir)
		if err != nil {
			return fmt.Errorf("directorio de subidas: %w", err)
		}
		blobs = local
	}

	// ── Casos de uso ──────────────────────────────────────────────────────────
	hasher, err := password.New(cfg.Auth.PasswordHasher)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}
	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Issuer)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	authUC, err := auth.NewAuthUseCase(userRepo, hasher, tokens, auth.Config{
		TokenTTL:     time.Duration(cfg.JWT.Expiration) * time.Minute,
		AllowedRoles: cfg.Auth.AllowedRoles,
	}, log, collector)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	docUC := document.NewDocumentUseCase(
		docRepo,
		blobs,
		infrapdf.NewTextExtractor(0),
		infrapdf.NewMarotoPDFGenerator(),
		log,
		collector,
	)

	// ── HTTP ──────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Storage.MaxUploadBytes + multipartOverhead,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("access")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Docs API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		DocumentUC:     docUC,
		Logger:         log,
		MaxUploadBytes: int64(cfg.Storage.MaxUploadBytes),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	return nil
}
