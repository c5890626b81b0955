package sales

import (
	"context"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de ledger, ventas, folios y turnos: el checkout debita stock,
// asigna folio y persiste la venta como una sola unidad de commit, revalidando
// el turno bajo su lock de fila para que un cierre concurrente no lo congele a
// mitad de la venta.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		folioRepo repository.FolioRepository,
		shiftRepo repository.ShiftRepository,
	) error) error
}

// Ledger interfaz para integrar ventas con el ledger de stock.
// ApplyInTx aplica un movimiento usando los repositorios del caller (misma
// transacción). Si retorna error (ej: ErrInsufficientStock) el caller debe hacer
// rollback.
type Ledger interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		input stock.ApplyInput,
		now time.Time,
	) (*entity.StockMovement, error)
}
