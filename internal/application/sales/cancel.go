package sales

import (
	"context"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// Cancel cancela una venta completada: por cada línea original escribe el
// movimiento compensatorio exacto (kind=venta_cancelada, delta=+cantidad) y marca
// la venta como cancelada, todo en una transacción.
// Cancelar dos veces la misma venta retorna ErrConflict sin movimientos adicionales
// (la venta se lee con FOR UPDATE, así dos cancelaciones concurrentes se serializan
// y la perdedora observa el estado ya cancelado).
func (uc *CheckoutUseCase) Cancel(ctx context.Context, saleID, reason, actorID string) (*entity.Sale, error) {
	if saleID == "" || reason == "" {
		return nil, domain.ErrInvalidInput
	}

	var cancelled *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		_ repository.FolioRepository,
		_ repository.ShiftRepository,
	) error {
		sale, err := saleRepo.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleCompletada {
			return domain.ErrConflict
		}
		lines, err := saleRepo.GetLines(saleID)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, line := range lines {
			if _, err := uc.ledger.ApplyInTx(movRepo, stockRepo, stock.ApplyInput{
				BranchID:    sale.BranchID,
				ProductID:   line.ProductID,
				Type:        entity.MovementVentaCancelada,
				Delta:       line.Quantity,
				ReferenceID: sale.ID,
				Reason:      reason,
				ActorID:     actorID,
			}, now); err != nil {
				return err
			}
		}
		sale.Status = entity.SaleCancelada
		sale.CancelledAt = &now
		sale.CancelReason = reason
		if err := saleRepo.Update(sale); err != nil {
			return err
		}
		cancelled = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
