package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc        *sales.CheckoutUseCase
	generator sales.TicketPDFGenerator
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.CheckoutUseCase, generator sales.TicketPDFGenerator) *SaleHandler {
	return &SaleHandler{uc: uc, generator: generator}
}

// Checkout godoc
// @Summary      Registrar una venta
// @Description  Calcula totales, asigna folio, debita stock y persiste la venta en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "branch_id, shift_id, lines, payment_method, amount_paid (efectivo)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := sales.CheckoutInput{
		BranchID:      in.BranchID,
		ShiftID:       in.ShiftID,
		CashierID:     userID,
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		AmountPaid:    in.AmountPaid,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, sales.CheckoutLine{
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			UnitPriceOverride: l.UnitPrice,
			Discount:          l.Discount,
		})
	}
	sale, lines, err := h.uc.Checkout(c.Context(), input)
	if err != nil {
		return saleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale, lines))
}

// GetByID godoc
// @Summary      Consultar una venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, lines, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale, lines))
}

// Cancel godoc
// @Summary      Cancelar una venta completada
// @Description  Revierte el stock con movimientos venta_cancelada y marca la venta como cancelada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  true  "reason"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	cancelled, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason, userID)
	if err != nil {
		return saleError(c, err)
	}
	_, lines, err := h.uc.GetSale(c.Context(), cancelled.ID)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(cancelled, lines))
}

// DownloadTicket godoc
// @Summary      Descargar el ticket de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ticket [get]
func (h *SaleHandler) DownloadTicket(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.DownloadTicketPDF(c.Context(), c.Params("id"), h.generator)
	if err != nil {
		return saleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

func saleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "operación en conflicto con el estado actual"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
