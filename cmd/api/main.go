package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/surtika-api/internal/application/auth"
	"github.com/jhoicas/surtika-api/internal/application/fulfillment"
	"github.com/jhoicas/surtika-api/internal/application/inventory"
	infrapdf "github.com/jhoicas/surtika-api/internal/infrastructure/pdf"
	"github.com/jhoicas/surtika-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/surtika-api/internal/interfaces/http"
	"github.com/jhoicas/surtika-api/pkg/config"
	"github.com/jhoicas/surtika-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos de lectura atados al pool; las escrituras pasan por el TxRunner.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	salesRepo := postgres.NewSalesOrderRepository(pool)
	stockOutRepo := postgres.NewStockOutOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	orchestrator := inventory.NewMovementOrchestrator(txRunner)
	registerBatchUC := inventory.NewRegisterBatchUseCase(txRunner, productRepo, orchestrator)
	queryUC := inventory.NewQueryUseCase(batchRepo, movementRepo, productRepo)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, productRepo, salesRepo, stockOutRepo, orchestrator)

	kardexGen := infrapdf.NewKardexPDFGenerator(cfg.App.Name)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Surtika API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterBatch: registerBatchUC,
		Queries:       queryUC,
		Orchestrator:  orchestrator,
		Fulfillment:   fulfillmentUC,
		AuthUC:        authUC,
		KardexGen:     kardexGen,
		JWTSecret:     cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
