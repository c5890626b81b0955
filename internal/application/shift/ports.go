package shift

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// ShiftTxRunner ejecuta las mutaciones de un turno dentro de una transacción.
// El cierre calcula totales y transiciona a cerrado en una sola unidad de
// commit; los movimientos manuales de caja validan el estado abierto bajo el
// mismo lock de fila del turno, así ninguno puede colarse tras un cierre que
// ya congeló los totales.
type ShiftTxRunner interface {
	RunShift(ctx context.Context, fn func(
		shiftRepo repository.ShiftRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
