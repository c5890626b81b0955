package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/shift"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// ShiftHandler maneja las peticiones HTTP de turnos de caja (protegido).
type ShiftHandler struct {
	uc        *shift.ManagerUseCase
	generator shift.ReportPDFGenerator
}

// NewShiftHandler construye el handler.
func NewShiftHandler(uc *shift.ManagerUseCase, generator shift.ReportPDFGenerator) *ShiftHandler {
	return &ShiftHandler{uc: uc, generator: generator}
}

// Open godoc
// @Summary      Abrir un turno de caja
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenShiftRequest  true  "till_id, branch_id, opening_float"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.OpenShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	opened, err := h.uc.Open(c.Context(), shift.OpenInput{
		TillID:       in.TillID,
		BranchID:     in.BranchID,
		CashierID:    userID,
		Type:         in.Type,
		OpeningFloat: in.OpeningFloat,
	})
	if err != nil {
		return shiftError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToShiftResponse(opened, nil))
}

// GetByID godoc
// @Summary      Consultar un turno con sus movimientos de caja
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del turno"
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id} [get]
func (h *ShiftHandler) GetByID(c *fiber.Ctx) error {
	s, movements, err := h.uc.GetShift(c.Context(), c.Params("id"))
	if err != nil {
		return shiftError(c, err)
	}
	return c.JSON(dto.ToShiftResponse(s, movements))
}

// RegisterCashMovement godoc
// @Summary      Registrar un ingreso o retiro manual de efectivo
// @Description  Montos por encima del umbral configurado exigen authorized_by.
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del turno"
// @Param        body  body  dto.CashMovementRequest  true  "type (ingreso|retiro), amount, concept, authorized_by"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/cash-movements [post]
func (h *ShiftHandler) RegisterCashMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.uc.RegisterCashMovement(c.Context(), shift.CashMovementInput{
		ShiftID:      c.Params("id"),
		Type:         in.Type,
		Amount:       in.Amount,
		Concept:      in.Concept,
		AuthorizedBy: in.AuthorizedBy,
		ActorID:      userID,
	})
	if err != nil {
		return shiftError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CashMovementResponse{
		ID:           movement.ID,
		Type:         movement.Type,
		Amount:       movement.Amount,
		Concept:      movement.Concept,
		AuthorizedBy: movement.AuthorizedBy,
		CreatedAt:    movement.CreatedAt,
		CreatedBy:    movement.CreatedBy,
	})
}

// Close godoc
// @Summary      Cerrar un turno con arqueo
// @Description  Calcula totales por método de pago, efectivo esperado y desvío; los totales quedan congelados.
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del turno"
// @Param        body  body  dto.CloseShiftRequest  true  "denominations, observations"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CloseShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := shift.CloseInput{
		ShiftID:      c.Params("id"),
		Observations: in.Observations,
		ActorID:      userID,
	}
	for _, d := range in.Denominations {
		input.Denominations = append(input.Denominations, entity.DenominationCount{
			Value: d.Value,
			Count: d.Count,
		})
	}
	closed, err := h.uc.Close(c.Context(), input)
	if err != nil {
		return shiftError(c, err)
	}
	return c.JSON(dto.ToShiftResponse(closed, nil))
}

// DownloadReport godoc
// @Summary      Descargar el reporte de arqueo en PDF
// @Description  Disponible solo para turnos cerrados.
// @Tags         shifts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del turno"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/report [get]
func (h *ShiftHandler) DownloadReport(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.DownloadReportPDF(c.Context(), c.Params("id"), h.generator)
	if err != nil {
		return shiftError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

func shiftError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "turno o sucursal no encontrado"})
	case errors.Is(err, domain.ErrAuthorizationRequired):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "AUTHORIZATION_REQUIRED", Message: "el monto excede el umbral y requiere autorizador"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "operación en conflicto con el estado actual del turno"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
