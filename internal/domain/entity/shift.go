package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un turno de caja.
const (
	ShiftAbierto = "abierto"
	ShiftCerrado = "cerrado"
)

// Clasificación del desvío al cierre (arqueo).
const (
	VarianceNormal      = "normal"
	VarianceAdvertencia = "advertencia"
	VarianceCritico     = "critico"
)

// Shift representa el turno de un cajero sobre una caja (till), delimitado por
// apertura y cierre. A lo sumo un turno abierto por caja.
// Los totales se calculan una sola vez al cierre y quedan congelados.
type Shift struct {
	ID            string
	TillID        string
	BranchID      string
	CashierID     string
	Type          string // informativo: matutino, vespertino, etc.
	OpeningFloat  decimal.Decimal
	Status        string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	TransferSales decimal.Decimal
	Income        decimal.Decimal // ingresos manuales
	Withdrawals   decimal.Decimal // retiros
	ExpectedCash  decimal.Decimal
	CountedCash   decimal.Decimal
	Variance      decimal.Decimal // contado - esperado
	VariancePct   decimal.Decimal
	VarianceClass string
	Observations  string
}

// Tipos de movimiento manual de caja.
const (
	CashIngreso = "ingreso"
	CashRetiro  = "retiro"
)

// CashMovement es un movimiento manual de efectivo dentro de un turno abierto.
// Append-only: nunca se modifica ni se borra.
type CashMovement struct {
	ID           string
	ShiftID      string
	Type         string
	Amount       decimal.Decimal
	Concept      string
	AuthorizedBy string // requerido arriba del umbral configurado
	CreatedAt    time.Time
	CreatedBy    string
}

// DenominationCount es una entrada del conteo físico por denominación en el arqueo.
type DenominationCount struct {
	Value decimal.Decimal
	Count int64
}
