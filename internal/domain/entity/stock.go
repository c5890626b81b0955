package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el stock actual de un producto en una sucursal
// (proyección materializada del ledger de movimientos).
// Se crea de forma perezosa con cantidad 0 en el primer movimiento; nunca se borra.
type StockRecord struct {
	BranchID  string
	ProductID string
	Quantity  decimal.Decimal // existencia física
	Reserved  decimal.Decimal // comprometido en traslados pendientes de envío
	UpdatedAt time.Time
}

// Available devuelve la cantidad disponible para venta o reserva: Quantity - Reserved.
func (s *StockRecord) Available() decimal.Decimal {
	return s.Quantity.Sub(s.Reserved)
}
