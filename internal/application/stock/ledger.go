// Package stock implementa el ledger de stock: el único componente autorizado a
// mutar RegistroStock. Cada mutación bloquea la fila (sucursal, producto), valida
// disponibilidad y escribe el movimiento y el snapshot en la misma transacción,
// de modo que el ledger y el snapshot nunca divergen.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// LedgerUseCase registra movimientos de stock de forma transaccional con bloqueo
// de fila (SELECT FOR UPDATE) y Commit/Rollback.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	movRepo     repository.StockMovementRepository
	stockRepo   repository.StockRepository
}

// NewLedgerUseCase construye el caso de uso. movRepo y stockRepo (atados al pool)
// se usan solo para lecturas fuera de transacción.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		movRepo:     movRepo,
		stockRepo:   stockRepo,
	}
}

// MovementInput entrada para registrar un movimiento manual de stock.
// Quantity siempre positiva; el signo lo determina el tipo.
type MovementInput struct {
	BranchID    string
	ProductID   string
	Type        string // entrada, salida, ajuste
	Quantity    decimal.Decimal
	Delta       decimal.Decimal // solo para ajuste: delta con signo
	Reason      string
	ReferenceID string
	ActorID     string
}

// RegisterMovement registra un movimiento manual (entrada, salida o ajuste) en su
// propia transacción. Venta, cancelación y traslado entran al ledger vía ApplyInTx
// desde la transacción de su propio caso de uso.
func (uc *LedgerUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	var delta decimal.Decimal
	switch input.Type {
	case entity.MovementEntrada:
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		delta = input.Quantity
	case entity.MovementSalida:
		if !input.Quantity.GreaterThan(decimal.Zero) || input.Reason == "" {
			return nil, domain.ErrInvalidInput
		}
		delta = input.Quantity.Neg()
	case entity.MovementAjuste:
		if input.Delta.IsZero() || input.Reason == "" {
			return nil, domain.ErrInvalidInput
		}
		delta = input.Delta
	default:
		return nil, domain.ErrInvalidInput
	}

	if product, err := uc.productRepo.GetByID(input.ProductID); err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	if branch, err := uc.branchRepo.GetByID(input.BranchID); err != nil || branch == nil {
		return nil, domain.ErrNotFound
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		var err error
		mov, err = uc.ApplyInTx(movRepo, stockRepo, ApplyInput{
			BranchID:    input.BranchID,
			ProductID:   input.ProductID,
			Type:        input.Type,
			Delta:       delta,
			Reason:      input.Reason,
			ReferenceID: input.ReferenceID,
			ActorID:     input.ActorID,
		}, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyInput entrada de bajo nivel para ApplyInTx: delta ya con signo.
type ApplyInput struct {
	BranchID    string
	ProductID   string
	Type        string
	Delta       decimal.Decimal
	Reason      string
	ReferenceID string
	ActorID     string
}

// ApplyInTx aplica un movimiento usando los repositorios del caller (misma
// transacción). Bloquea la fila, rechaza con ErrInsufficientStock cualquier delta
// negativo que dejaría el disponible (cantidad - reservado) por debajo de cero, y
// escribe movimiento + snapshot. Si retorna error el caller debe hacer rollback.
func (uc *LedgerUseCase) ApplyInTx(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	input ApplyInput,
	now time.Time,
) (*entity.StockMovement, error) {
	if input.Delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	record, err := stockRepo.GetForUpdate(input.BranchID, input.ProductID)
	if err != nil {
		return nil, err
	}
	before := record.Quantity
	after := before.Add(input.Delta)
	if input.Delta.IsNegative() && after.Sub(record.Reserved).IsNegative() {
		return nil, domain.ErrInsufficientStock
	}

	record.Quantity = after
	record.UpdatedAt = now
	if err := stockRepo.Upsert(record); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		BranchID:       input.BranchID,
		ProductID:      input.ProductID,
		Type:           input.Type,
		Delta:          input.Delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceID:    input.ReferenceID,
		Reason:         input.Reason,
		CreatedAt:      now,
		CreatedBy:      input.ActorID,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ReserveInTx aparta cantidad para un traslado pendiente sin mover existencia
// física. Falla con ErrInsufficientStock si excede el disponible.
func (uc *LedgerUseCase) ReserveInTx(
	stockRepo repository.StockRepository,
	branchID, productID string,
	quantity decimal.Decimal,
	now time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	record, err := stockRepo.GetForUpdate(branchID, productID)
	if err != nil {
		return err
	}
	if quantity.GreaterThan(record.Available()) {
		return domain.ErrInsufficientStock
	}
	record.Reserved = record.Reserved.Add(quantity)
	record.UpdatedAt = now
	return stockRepo.Upsert(record)
}

// ReleaseInTx libera una reserva. La reserva nunca queda negativa: liberar más de
// lo reservado indica un error de programación y se rechaza.
func (uc *LedgerUseCase) ReleaseInTx(
	stockRepo repository.StockRepository,
	branchID, productID string,
	quantity decimal.Decimal,
	now time.Time,
) error {
	if !quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	record, err := stockRepo.GetForUpdate(branchID, productID)
	if err != nil {
		return err
	}
	if quantity.GreaterThan(record.Reserved) {
		return domain.ErrConflict
	}
	record.Reserved = record.Reserved.Sub(quantity)
	record.UpdatedAt = now
	return stockRepo.Upsert(record)
}

// Reserve aparta stock en su propia transacción (usado por el flujo de traslados).
func (uc *LedgerUseCase) Reserve(ctx context.Context, branchID, productID string, quantity decimal.Decimal) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		return uc.ReserveInTx(stockRepo, branchID, productID, quantity, time.Now())
	})
}

// Release libera una reserva en su propia transacción.
func (uc *LedgerUseCase) Release(ctx context.Context, branchID, productID string, quantity decimal.Decimal) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		return uc.ReleaseInTx(stockRepo, branchID, productID, quantity, time.Now())
	})
}

// GetStock consulta el snapshot de stock de un producto en una sucursal.
func (uc *LedgerUseCase) GetStock(ctx context.Context, branchID, productID string) (*entity.StockRecord, error) {
	return uc.stockRepo.Get(branchID, productID)
}

// ListMovements lista el ledger de un producto en una sucursal (más reciente primero).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, branchID, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.movRepo.ListByProduct(branchID, productID, from, to, limit, offset)
}
