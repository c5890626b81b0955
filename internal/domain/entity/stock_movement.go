package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementEntrada        = "entrada"
	MovementSalida         = "salida"
	MovementVenta          = "venta"
	MovementVentaCancelada = "venta_cancelada"
	MovementTransferencia  = "transferencia"
	MovementAjuste         = "ajuste"
)

// StockMovement es una entrada del ledger de stock. Append-only: los movimientos
// nunca se modifican ni se borran; una cancelación crea el movimiento inverso.
// Invariante: QuantityAfter = QuantityBefore + Delta, y QuantityAfter debe coincidir
// con StockRecord.Quantity inmediatamente después de la escritura.
type StockMovement struct {
	ID             string
	BranchID       string
	ProductID      string
	Type           string
	Delta          decimal.Decimal // positivo entrada, negativo salida
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	ReferenceID    string // venta o traslado que originó el movimiento
	Reason         string
	CreatedAt      time.Time
	CreatedBy      string // UserID
}
