package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transfer"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// TransferHandler maneja las peticiones HTTP de traslados entre sucursales (protegido).
type TransferHandler struct {
	uc *transfer.WorkflowUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.WorkflowUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Request godoc
// @Summary      Solicitar un traslado entre sucursales
// @Description  Reserva la cantidad en la sucursal de origen; el débito físico ocurre al enviar.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestTransferRequest  true  "product_id, quantity, origin_branch_id, dest_branch_id, reason"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Request(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RequestTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Request(c.Context(), transfer.RequestInput{
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		OriginBranchID: in.OriginBranchID,
		DestBranchID:   in.DestBranchID,
		Reason:         in.Reason,
		RequesterID:    userID,
	})
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(result))
}

// GetByID godoc
// @Summary      Consultar un traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.uc.GetTransfer(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

// Approve godoc
// @Summary      Aprobar un traslado solicitado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	result, err := h.uc.Approve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

// Ship godoc
// @Summary      Enviar un traslado aprobado
// @Description  Consume la reserva y debita el stock en la sucursal de origen.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	result, err := h.uc.Ship(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

// Receive godoc
// @Summary      Recibir un traslado en tránsito
// @Description  Abona el stock en la sucursal de destino y cierra el traslado.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	result, err := h.uc.Receive(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

// Reject godoc
// @Summary      Rechazar un traslado solicitado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del traslado"
// @Param        body  body  dto.TransferReasonRequest  true  "reason"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	var in dto.TransferReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Reject(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

// Cancel godoc
// @Summary      Cancelar un traslado solicitado o aprobado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del traslado"
// @Param        body  body  dto.TransferReasonRequest  true  "reason"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.TransferReasonRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.CancelTransfer(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(dto.ToTransferResponse(result))
}

func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "traslado, producto o sucursal no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "disponible insuficiente en origen"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "transición inválida para el estado actual"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
