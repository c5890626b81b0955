package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// SaleLineRequest una línea del carrito en el checkout.
type SaleLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // nil = precio de lista
	Discount  decimal.Decimal  `json:"discount,omitempty"`   // monto absoluto por línea
}

// CheckoutRequest body para POST /api/sales.
type CheckoutRequest struct {
	BranchID      string            `json:"branch_id"`
	ShiftID       string            `json:"shift_id"`
	CustomerID    string            `json:"customer_id,omitempty"`
	Lines         []SaleLineRequest `json:"lines"`
	PaymentMethod string            `json:"payment_method"` // efectivo | tarjeta | transferencia
	AmountPaid    decimal.Decimal   `json:"amount_paid,omitempty"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleLineResponse línea persistida con el snapshot del producto.
type SaleLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Quantity    decimal.Decimal `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID            string             `json:"id"`
	BranchID      string             `json:"branch_id"`
	ShiftID       string             `json:"shift_id"`
	CashierID     string             `json:"cashier_id"`
	CustomerID    string             `json:"customer_id,omitempty"`
	Folio         string             `json:"folio"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Change        decimal.Decimal    `json:"change"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	Lines         []SaleLineResponse `json:"lines,omitempty"`
}

// ToSaleResponse convierte la venta y sus líneas al DTO de respuesta.
func ToSaleResponse(sale *entity.Sale, lines []*entity.SaleLine) SaleResponse {
	resp := SaleResponse{
		ID:            sale.ID,
		BranchID:      sale.BranchID,
		ShiftID:       sale.ShiftID,
		CashierID:     sale.CashierID,
		CustomerID:    sale.CustomerID,
		Folio:         sale.Folio,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		AmountPaid:    sale.AmountPaid,
		Change:        sale.Change,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
		CancelledAt:   sale.CancelledAt,
		CancelReason:  sale.CancelReason,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Quantity:    l.Quantity,
			Discount:    l.Discount,
			Subtotal:    l.Subtotal,
			Tax:         l.Tax,
			Total:       l.Total,
		})
	}
	return resp
}
