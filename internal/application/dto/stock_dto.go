package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/stock/movements.
// Quantity siempre positiva (el tipo determina el signo); para ajuste se manda
// Delta con signo en su lugar.
type RegisterMovementRequest struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"` // entrada | salida | ajuste
	Quantity  decimal.Decimal `json:"quantity,omitempty"`
	Delta     decimal.Decimal `json:"delta,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// StockResponse snapshot de stock de un producto en una sucursal.
type StockResponse struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementResponse una entrada del ledger de stock.
type MovementResponse struct {
	ID             string          `json:"id"`
	BranchID       string          `json:"branch_id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

// ToStockResponse convierte la entidad al DTO de respuesta.
func ToStockResponse(s *entity.StockRecord) StockResponse {
	return StockResponse{
		BranchID:  s.BranchID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		Reserved:  s.Reserved,
		Available: s.Available(),
		UpdatedAt: s.UpdatedAt,
	}
}

// ToMovementResponse convierte la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		BranchID:       m.BranchID,
		ProductID:      m.ProductID,
		Type:           m.Type,
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}
