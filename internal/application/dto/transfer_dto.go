package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// RequestTransferRequest body para POST /api/transfers.
type RequestTransferRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	OriginBranchID string          `json:"origin_branch_id"`
	DestBranchID   string          `json:"dest_branch_id"`
	Reason         string          `json:"reason,omitempty"`
}

// TransferReasonRequest body para rechazar o cancelar un traslado.
type TransferReasonRequest struct {
	Reason string `json:"reason"`
}

// TransferResponse un traslado con su historial de transiciones.
type TransferResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	OriginBranchID  string          `json:"origin_branch_id"`
	DestBranchID    string          `json:"dest_branch_id"`
	Status          string          `json:"status"`
	Reason          string          `json:"reason,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	RequestedBy     string          `json:"requested_by"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	ShippedBy       string          `json:"shipped_by,omitempty"`
	ReceivedBy      string          `json:"received_by,omitempty"`
	RequestedAt     time.Time       `json:"requested_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	ReceivedAt      *time.Time      `json:"received_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
}

// ToTransferResponse convierte la entidad al DTO de respuesta.
func ToTransferResponse(t *entity.Transfer) TransferResponse {
	return TransferResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		Quantity:        t.Quantity,
		OriginBranchID:  t.OriginBranchID,
		DestBranchID:    t.DestBranchID,
		Status:          t.Status,
		Reason:          t.Reason,
		RejectionReason: t.RejectionReason,
		RequestedBy:     t.RequestedBy,
		ApprovedBy:      t.ApprovedBy,
		ShippedBy:       t.ShippedBy,
		ReceivedBy:      t.ReceivedBy,
		RequestedAt:     t.RequestedAt,
		ApprovedAt:      t.ApprovedAt,
		ShippedAt:       t.ShippedAt,
		ReceivedAt:      t.ReceivedAt,
		ClosedAt:        t.ClosedAt,
	}
}
