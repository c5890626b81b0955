package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// TransferTxRunner ejecuta una función dentro de una transacción con los
// repositorios de ledger y traslados: cada transición de estado y su efecto en
// stock comparten unidad de commit.
type TransferTxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
	) error) error
}

// Ledger operaciones del ledger de stock que el flujo de traslados necesita,
// siempre dentro de la transacción del caller.
type Ledger interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		input stock.ApplyInput,
		now time.Time,
	) (*entity.StockMovement, error)
	ReserveInTx(stockRepo repository.StockRepository, branchID, productID string, quantity decimal.Decimal, now time.Time) error
	ReleaseInTx(stockRepo repository.StockRepository, branchID, productID string, quantity decimal.Decimal, now time.Time) error
}
