package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/shift"
	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *stock.LedgerUseCase
	Checkout  *sales.CheckoutUseCase
	Transfers *transfer.WorkflowUseCase
	Shifts    *shift.ManagerUseCase
	TicketPDF sales.TicketPDFGenerator
	ReportPDF shift.ReportPDFGenerator
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; la aprobación
// de traslados y los ajustes de inventario además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stockGroup.Post("/movements", RequireRole("gerente", "almacenista"), stockHandler.RegisterMovement)
	stockGroup.Get("/:branch_id/:product_id", stockHandler.GetStock)
	stockGroup.Get("/:branch_id/:product_id/movements", stockHandler.ListMovements)

	// Sales (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.Checkout, deps.TicketPDF)
	salesGroup.Post("/", saleHandler.Checkout)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/ticket", saleHandler.DownloadTicket)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)

	// Transfers (protegido; aprobar/rechazar solo gerente)
	transfersGroup := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers)
	transfersGroup.Post("/", transferHandler.Request)
	transfersGroup.Get("/:id", transferHandler.GetByID)
	transfersGroup.Post("/:id/approve", RequireRole("gerente"), transferHandler.Approve)
	transfersGroup.Post("/:id/reject", RequireRole("gerente"), transferHandler.Reject)
	transfersGroup.Post("/:id/ship", RequireRole("gerente", "almacenista"), transferHandler.Ship)
	transfersGroup.Post("/:id/receive", RequireRole("gerente", "almacenista"), transferHandler.Receive)
	transfersGroup.Post("/:id/cancel", transferHandler.Cancel)

	// Shifts (protegido)
	shiftsGroup := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.Shifts, deps.ReportPDF)
	shiftsGroup.Post("/", shiftHandler.Open)
	shiftsGroup.Get("/:id", shiftHandler.GetByID)
	shiftsGroup.Post("/:id/cash-movements", shiftHandler.RegisterCashMovement)
	shiftsGroup.Post("/:id/close", shiftHandler.Close)
	shiftsGroup.Get("/:id/report", shiftHandler.DownloadReport)
}
