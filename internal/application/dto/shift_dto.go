package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// OpenShiftRequest body para POST /api/shifts.
type OpenShiftRequest struct {
	TillID       string          `json:"till_id"`
	BranchID     string          `json:"branch_id"`
	Type         string          `json:"type,omitempty"` // matutino, vespertino, etc.
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// CashMovementRequest body para POST /api/shifts/:id/cash-movements.
type CashMovementRequest struct {
	Type         string          `json:"type"` // ingreso | retiro
	Amount       decimal.Decimal `json:"amount"`
	Concept      string          `json:"concept"`
	AuthorizedBy string          `json:"authorized_by,omitempty"`
}

// DenominationRequest una denominación contada en el arqueo.
type DenominationRequest struct {
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// CloseShiftRequest body para POST /api/shifts/:id/close.
type CloseShiftRequest struct {
	Denominations []DenominationRequest `json:"denominations"`
	Observations  string                `json:"observations,omitempty"`
}

// CashMovementResponse un movimiento manual de efectivo.
type CashMovementResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Concept      string          `json:"concept"`
	AuthorizedBy string          `json:"authorized_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
}

// ShiftResponse turno con totales (congelados tras el cierre).
type ShiftResponse struct {
	ID            string                 `json:"id"`
	TillID        string                 `json:"till_id"`
	BranchID      string                 `json:"branch_id"`
	CashierID     string                 `json:"cashier_id"`
	Type          string                 `json:"type,omitempty"`
	OpeningFloat  decimal.Decimal        `json:"opening_float"`
	Status        string                 `json:"status"`
	OpenedAt      time.Time              `json:"opened_at"`
	ClosedAt      *time.Time             `json:"closed_at,omitempty"`
	CashSales     decimal.Decimal        `json:"cash_sales"`
	CardSales     decimal.Decimal        `json:"card_sales"`
	TransferSales decimal.Decimal        `json:"transfer_sales"`
	Income        decimal.Decimal        `json:"income"`
	Withdrawals   decimal.Decimal        `json:"withdrawals"`
	ExpectedCash  decimal.Decimal        `json:"expected_cash"`
	CountedCash   decimal.Decimal        `json:"counted_cash"`
	Variance      decimal.Decimal        `json:"variance"`
	VariancePct   decimal.Decimal        `json:"variance_pct"`
	VarianceClass string                 `json:"variance_class,omitempty"`
	Observations  string                 `json:"observations,omitempty"`
	CashMovements []CashMovementResponse `json:"cash_movements,omitempty"`
}

// ToShiftResponse convierte el turno y sus movimientos al DTO de respuesta.
func ToShiftResponse(s *entity.Shift, movements []*entity.CashMovement) ShiftResponse {
	resp := ShiftResponse{
		ID:            s.ID,
		TillID:        s.TillID,
		BranchID:      s.BranchID,
		CashierID:     s.CashierID,
		Type:          s.Type,
		OpeningFloat:  s.OpeningFloat,
		Status:        s.Status,
		OpenedAt:      s.OpenedAt,
		ClosedAt:      s.ClosedAt,
		CashSales:     s.CashSales,
		CardSales:     s.CardSales,
		TransferSales: s.TransferSales,
		Income:        s.Income,
		Withdrawals:   s.Withdrawals,
		ExpectedCash:  s.ExpectedCash,
		CountedCash:   s.CountedCash,
		Variance:      s.Variance,
		VariancePct:   s.VariancePct,
		VarianceClass: s.VarianceClass,
		Observations:  s.Observations,
	}
	for _, m := range movements {
		resp.CashMovements = append(resp.CashMovements, CashMovementResponse{
			ID:           m.ID,
			Type:         m.Type,
			Amount:       m.Amount,
			Concept:      m.Concept,
			AuthorizedBy: m.AuthorizedBy,
			CreatedAt:    m.CreatedAt,
			CreatedBy:    m.CreatedBy,
		})
	}
	return resp
}
