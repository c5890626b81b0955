package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleCompletada = "completada"
	SaleCancelada  = "cancelada"
)

// Métodos de pago.
const (
	PaymentEfectivo      = "efectivo"
	PaymentTarjeta       = "tarjeta"
	PaymentTransferencia = "transferencia"
)

// Sale representa una venta de mostrador. Se crea en checkout con estado completada;
// la única mutación permitida después es la transición a cancelada.
type Sale struct {
	ID            string
	BranchID      string
	ShiftID       string // turno de caja al que se atribuye la venta
	CashierID     string
	CustomerID    string // opcional
	Folio         string // consecutivo legible, ej. "A-000042"
	FolioNumber   int64
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	Status        string
	CreatedAt     time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// SaleLine es una línea de venta con el snapshot del producto al momento de vender.
// Se crea junto con la venta y nunca se modifica.
type SaleLine struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Quantity    decimal.Decimal
	Discount    decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}
