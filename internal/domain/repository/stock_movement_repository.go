package repository

import (
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del ledger de stock.
// Solo inserción y lectura: los movimientos nunca se modifican.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByProduct(branchID, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
