package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	ledger *stock.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerUseCase) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento manual de stock
// @Description  entrada, salida o ajuste. Venta, cancelación y traslado entran al ledger desde su propio flujo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "branch_id, product_id, type, quantity (o delta para ajuste), reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.ledger.RegisterMovement(c.Context(), stock.MovementInput{
		BranchID:  in.BranchID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Delta:     in.Delta,
		Reason:    in.Reason,
		ActorID:   userID,
	})
	if err != nil {
		return stockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// GetStock godoc
// @Summary      Consultar stock de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   path  string  true  "Sucursal"
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/stock/{branch_id}/{product_id} [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	record, err := h.ledger.GetStock(c.Context(), c.Params("branch_id"), c.Params("product_id"))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.ToStockResponse(record))
}

// ListMovements godoc
// @Summary      Historial del ledger de un producto en una sucursal
// @Description  Más reciente primero. Filtros opcionales from/to (RFC 3339) y paginación limit/offset.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   path   string  true   "Sucursal"
// @Param        product_id  path   string  true   "Producto"
// @Param        from        query  string  false  "Fecha inicial (RFC 3339)"
// @Param        to          query  string  false  "Fecha final (RFC 3339)"
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{branch_id}/{product_id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC 3339)"})
		}
		from = &ts
	}
	if s := c.Query("to"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC 3339)"})
		}
		to = &ts
	}

	movements, err := h.ledger.ListMovements(c.Context(), c.Params("branch_id"), c.Params("product_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return stockError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o sucursal no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "operación en conflicto con el estado actual"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
