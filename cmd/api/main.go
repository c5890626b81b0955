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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/shift"
	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transfer"
	infrapdf "github.com/jhoicas/PuntoVenta-api/internal/infrastructure/pdf"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/PuntoVenta-api/internal/interfaces/http"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
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

	productRepo := postgres.NewProductRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	shiftRepo := postgres.NewShiftRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := stock.NewLedgerUseCase(txRunner, productRepo, branchRepo, movementRepo, stockRepo)
	checkoutUC := sales.NewCheckoutUseCase(txRunner, ledgerUC, productRepo, branchRepo, shiftRepo, saleRepo, cfg.POS.FolioSeries)
	transferUC := transfer.NewWorkflowUseCase(txRunner, ledgerUC, productRepo, branchRepo, transferRepo)
	shiftUC := shift.NewManagerUseCase(txRunner, shiftRepo, saleRepo, branchRepo, shift.Thresholds{
		CashAuthThreshold:   decimal.NewFromFloat(cfg.POS.CashAuthThreshold),
		VarianceWarnPct:     decimal.NewFromFloat(cfg.POS.VarianceWarnPct),
		VarianceCriticalPct: decimal.NewFromFloat(cfg.POS.VarianceCriticalPct),
	})

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

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
		Title:    "PuntoVenta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerUC,
		Checkout:  checkoutUC,
		Transfers: transferUC,
		Shifts:    shiftUC,
		TicketPDF: pdfGenerator,
		ReportPDF: pdfGenerator,
		JWTSecret: cfg.JWT.Secret,
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
