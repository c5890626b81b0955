// Package sales implementa el procesador de ventas: checkout y cancelación.
// El checkout debita el ledger de stock línea por línea dentro de una sola
// transacción; una falla en cualquier línea revierte todo (sin débitos parciales).
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/taxes"
)

// CheckoutUseCase crea ventas y las cancela.
type CheckoutUseCase struct {
	txRunner    SaleTxRunner
	ledger      Ledger
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	shiftRepo   repository.ShiftRepository
	saleRepo    repository.SaleRepository
	folioSeries string
}

// NewCheckoutUseCase construye el caso de uso. folioSeries es la serie del
// consecutivo (configuración; los folios son por sucursal+serie).
func NewCheckoutUseCase(
	txRunner SaleTxRunner,
	ledger Ledger,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	folioSeries string,
) *CheckoutUseCase {
	if folioSeries == "" {
		folioSeries = "A"
	}
	return &CheckoutUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		shiftRepo:   shiftRepo,
		saleRepo:    saleRepo,
		folioSeries: folioSeries,
	}
}

// CheckoutLine una línea solicitada en el checkout.
type CheckoutLine struct {
	ProductID         string
	Quantity          decimal.Decimal
	UnitPriceOverride *decimal.Decimal // nil = precio de lista del producto
	Discount          decimal.Decimal  // monto absoluto por línea
}

// CheckoutInput entrada del checkout.
type CheckoutInput struct {
	BranchID      string
	ShiftID       string
	CashierID     string
	CustomerID    string // opcional
	Lines         []CheckoutLine
	PaymentMethod string
	AmountPaid    decimal.Decimal // solo efectivo; tarjeta/transferencia pagan exacto
}

// Checkout ejecuta la venta:
//  1. calcula subtotal/impuesto/total por línea (tasa del producto o de la sucursal),
//  2. valida el pago,
//  3. en UNA transacción: asigna folio, debita el ledger por cada línea (kind=venta)
//     y persiste Venta + líneas con estado completada.
//
// Si cualquier línea falla con ErrInsufficientStock se revierte todo el checkout.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, input CheckoutInput) (*entity.Sale, []*entity.SaleLine, error) {
	if input.BranchID == "" || input.ShiftID == "" || input.CashierID == "" || len(input.Lines) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	switch input.PaymentMethod {
	case entity.PaymentEfectivo, entity.PaymentTarjeta, entity.PaymentTransferencia:
	default:
		return nil, nil, domain.ErrInvalidInput
	}

	branch, err := uc.branchRepo.GetByID(input.BranchID)
	if err != nil || branch == nil {
		return nil, nil, domain.ErrNotFound
	}

	// La venta se atribuye a un turno abierto de la misma sucursal; los totales del
	// arqueo se derivan exclusivamente de esta referencia. Esta lectura es el
	// rechazo rápido; la validación autoritativa ocurre dentro de la transacción
	// bajo el lock de fila del turno.
	shift, err := uc.shiftRepo.GetByID(input.ShiftID)
	if err != nil || shift == nil {
		return nil, nil, domain.ErrNotFound
	}
	if shift.Status != entity.ShiftAbierto || shift.BranchID != input.BranchID {
		return nil, nil, domain.ErrConflict
	}

	// Validar productos y calcular líneas fuera de la transacción (solo lectura).
	now := time.Now()
	saleID := uuid.New().String()
	lines := make([]*entity.SaleLine, 0, len(input.Lines))
	var subtotal, taxTotal, discountTotal decimal.Decimal
	for _, in := range input.Lines {
		if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(in.ProductID)
		if err != nil || product == nil {
			return nil, nil, domain.ErrNotFound
		}
		unitPrice := product.Price
		if in.UnitPriceOverride != nil {
			if in.UnitPriceOverride.IsNegative() {
				return nil, nil, domain.ErrInvalidInput
			}
			unitPrice = *in.UnitPriceOverride
		}
		rate := taxes.ApplicableRate(product, branch)
		totals, err := taxes.Calculate(unitPrice, in.Quantity, in.Discount, rate)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, &entity.SaleLine{
			ID:          uuid.New().String(),
			SaleID:      saleID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   unitPrice,
			TaxRate:     rate,
			Quantity:    in.Quantity,
			Discount:    in.Discount,
			Subtotal:    totals.Subtotal,
			Tax:         totals.Tax,
			Total:       totals.Total,
		})
		subtotal = subtotal.Add(totals.Subtotal)
		taxTotal = taxTotal.Add(totals.Tax)
		discountTotal = discountTotal.Add(in.Discount)
	}
	total := subtotal.Add(taxTotal)

	// Pago: efectivo exige pagado >= total y produce cambio; tarjeta y
	// transferencia pagan exacto.
	amountPaid := total
	change := decimal.Zero
	if input.PaymentMethod == entity.PaymentEfectivo {
		if input.AmountPaid.LessThan(total) {
			return nil, nil, domain.ErrInvalidInput
		}
		amountPaid = input.AmountPaid
		change = input.AmountPaid.Sub(total)
	}

	sale := &entity.Sale{
		ID:            saleID,
		BranchID:      input.BranchID,
		ShiftID:       input.ShiftID,
		CashierID:     input.CashierID,
		CustomerID:    input.CustomerID,
		Subtotal:      subtotal,
		Tax:           taxTotal,
		Discount:      discountTotal,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		AmountPaid:    amountPaid,
		Change:        change,
		Status:        entity.SaleCompletada,
		CreatedAt:     now,
	}

	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		folioRepo repository.FolioRepository,
		shiftRepo repository.ShiftRepository,
	) error {
		// Revalidar el turno bajo su lock de fila: un cierre concurrente toma el
		// mismo lock al congelar totales, así la venta solo se persiste si el
		// turno sigue abierto al momento del commit.
		locked, err := shiftRepo.GetByIDForUpdate(input.ShiftID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.ShiftAbierto {
			return domain.ErrConflict
		}

		// Folio bajo exclusión mutua: el allocator incrementa y devuelve en una
		// sola sentencia, así dos checkouts concurrentes nunca colisionan.
		number, err := folioRepo.Next(input.BranchID, uc.folioSeries)
		if err != nil {
			return err
		}
		sale.FolioNumber = number
		sale.Folio = fmt.Sprintf("%s-%06d", uc.folioSeries, number)

		// Débito del ledger por cada línea. Un ErrInsufficientStock en cualquier
		// línea aborta la transacción completa: ningún movimiento parcial queda.
		for _, line := range lines {
			if _, err := uc.ledger.ApplyInTx(movRepo, stockRepo, stock.ApplyInput{
				BranchID:    input.BranchID,
				ProductID:   line.ProductID,
				Type:        entity.MovementVenta,
				Delta:       line.Quantity.Neg(),
				ReferenceID: saleID,
				ActorID:     input.CashierID,
			}, now); err != nil {
				return err
			}
		}

		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := saleRepo.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, lines, nil
}

// GetSale obtiene una venta con sus líneas.
func (uc *CheckoutUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, []*entity.SaleLine, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil || sale == nil {
		return nil, nil, domain.ErrNotFound
	}
	lines, err := uc.saleRepo.GetLines(id)
	if err != nil {
		return nil, nil, err
	}
	return sale, lines, nil
}
