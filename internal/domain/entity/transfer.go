package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado entre sucursales. Las transiciones son monótonas:
// solicitada → aprobada → en_transito → recibida
// solicitada → rechazada
// solicitada | aprobada → cancelada
// Una vez en_transito solo puede recibirse.
const (
	TransferSolicitada = "solicitada"
	TransferAprobada   = "aprobada"
	TransferEnTransito = "en_transito"
	TransferRecibida   = "recibida"
	TransferRechazada  = "rechazada"
	TransferCancelada  = "cancelada"
)

// Transfer representa el movimiento de mercancía de una sucursal a otra.
// La reserva en origen se toma al solicitar; el débito físico ocurre al enviar
// y el abono en destino al recibir.
type Transfer struct {
	ID              string
	ProductID       string
	Quantity        decimal.Decimal
	OriginBranchID  string
	DestBranchID    string
	Status          string
	Reason          string
	RejectionReason string
	RequestedBy     string
	ApprovedBy      string
	ShippedBy       string
	ReceivedBy      string
	RequestedAt     time.Time
	ApprovedAt      *time.Time
	ShippedAt       *time.Time
	ReceivedAt      *time.Time
	ClosedAt        *time.Time // rechazo o cancelación
}
