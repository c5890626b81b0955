package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
)

const (
	branchID  = "suc-centro"
	shiftID   = "turno-1"
	tillID    = "caja-1"
	cashierID = "cajero-1"
	prodA     = "prod-a"
	prodB     = "prod-b"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type env struct {
	store  *memory.Store
	ledger *stock.LedgerUseCase
	uc     *sales.CheckoutUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	store.SeedBranch(&entity.Branch{ID: branchID, Name: "Sucursal Centro", DefaultTaxRate: d("0.16")})
	store.SeedProduct(&entity.Product{ID: prodA, Name: "Refresco 600ml", Price: d("18"), Taxable: true})
	store.SeedProduct(&entity.Product{ID: prodB, Name: "Tortillas kg", Price: d("25"), Taxable: false})

	txRunner := memory.NewTxRunner(store)
	ledger := stock.NewLedgerUseCase(
		txRunner,
		memory.NewProductRepository(store),
		memory.NewBranchRepository(store),
		memory.NewStockMovementRepository(store),
		memory.NewStockRepository(store),
	)
	uc := sales.NewCheckoutUseCase(
		txRunner,
		ledger,
		memory.NewProductRepository(store),
		memory.NewBranchRepository(store),
		memory.NewShiftRepository(store),
		memory.NewSaleRepository(store),
		"A",
	)

	// Turno abierto al que se atribuyen las ventas
	require.NoError(t, memory.NewShiftRepository(store).Create(&entity.Shift{
		ID: shiftID, TillID: tillID, BranchID: branchID, CashierID: cashierID,
		OpeningFloat: d("500"), Status: entity.ShiftAbierto, OpenedAt: time.Now(),
	}))
	return &env{store: store, ledger: ledger, uc: uc}
}

func (e *env) checkout(qty string, payment string, paid string) (*entity.Sale, []*entity.SaleLine, error) {
	return e.uc.Checkout(context.Background(), sales.CheckoutInput{
		BranchID: branchID, ShiftID: shiftID, CashierID: cashierID,
		Lines:         []sales.CheckoutLine{{ProductID: prodA, Quantity: d(qty)}},
		PaymentMethod: payment,
		AmountPaid:    d(paid),
	})
}

func (e *env) stockOf(t *testing.T, productID string) *entity.StockRecord {
	t.Helper()
	rec, err := e.ledger.GetStock(context.Background(), branchID, productID)
	require.NoError(t, err)
	return rec
}

func (e *env) movementsOf(t *testing.T, productID string) []*entity.StockMovement {
	t.Helper()
	movs, err := e.ledger.ListMovements(context.Background(), branchID, productID, nil, nil, 100, 0)
	require.NoError(t, err)
	return movs
}

// Checkout de 3 sobre 10 deja 7 y un movimiento venta(-3);
// la cancelación regresa a 10 con un movimiento venta_cancelada(+3).
func TestCheckout_VentaYCancelacionExacta(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	sale, lines, err := e.checkout("3", entity.PaymentEfectivo, "100")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, entity.SaleCompletada, sale.Status)
	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("7")))

	movs := e.movementsOf(t, prodA)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementVenta, movs[0].Type)
	assert.True(t, movs[0].Delta.Equal(d("-3")))
	assert.Equal(t, sale.ID, movs[0].ReferenceID)

	cancelled, err := e.uc.Cancel(context.Background(), sale.ID, "cliente se arrepintió", cashierID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCancelada, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("10")), "reversión exacta al valor previo")

	movs = e.movementsOf(t, prodA)
	require.Len(t, movs, 2)
	// más reciente primero
	assert.Equal(t, entity.MovementVentaCancelada, movs[0].Type)
	assert.True(t, movs[0].Delta.Equal(d("3")))
}

// Pedir 11 sobre 10 falla sin tocar stock ni ledger.
func TestCheckout_StockInsuficiente(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	_, _, err := e.checkout("11", entity.PaymentEfectivo, "1000")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("10")))
	assert.Empty(t, e.movementsOf(t, prodA))
}

// La atomicidad cubre todas las líneas: si la segunda falla, el débito de la
// primera también se revierte.
func TestCheckout_FallaParcialRevierteTodo(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))
	e.store.SeedStock(branchID, prodB, d("1"))

	_, _, err := e.uc.Checkout(context.Background(), sales.CheckoutInput{
		BranchID: branchID, ShiftID: shiftID, CashierID: cashierID,
		Lines: []sales.CheckoutLine{
			{ProductID: prodA, Quantity: d("2")},
			{ProductID: prodB, Quantity: d("5")}, // insuficiente
		},
		PaymentMethod: entity.PaymentTarjeta,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("10")), "sin débito parcial")
	assert.Empty(t, e.movementsOf(t, prodA))
	assert.Empty(t, e.movementsOf(t, prodB))
}

func TestCheckout_PagoEfectivoConCambio(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	// 2 × 18 = 36 + IVA 16% (5.76) = 41.76
	sale, _, err := e.checkout("2", entity.PaymentEfectivo, "50")
	require.NoError(t, err)
	assert.True(t, sale.Subtotal.Equal(d("36")))
	assert.True(t, sale.Tax.Equal(d("5.76")))
	assert.True(t, sale.Total.Equal(d("41.76")))
	assert.True(t, sale.AmountPaid.Equal(d("50")))
	assert.True(t, sale.Change.Equal(d("8.24")))
}

func TestCheckout_EfectivoInsuficienteRechazado(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	_, _, err := e.checkout("2", entity.PaymentEfectivo, "40")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("10")))
}

func TestCheckout_TarjetaPagaExacto(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	sale, _, err := e.checkout("1", entity.PaymentTarjeta, "0")
	require.NoError(t, err)
	assert.True(t, sale.AmountPaid.Equal(sale.Total))
	assert.True(t, sale.Change.IsZero())
}

func TestCheckout_ProductoExentoNoGrava(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodB, d("10"))

	sale, _, err := e.uc.Checkout(context.Background(), sales.CheckoutInput{
		BranchID: branchID, ShiftID: shiftID, CashierID: cashierID,
		Lines:         []sales.CheckoutLine{{ProductID: prodB, Quantity: d("2")}},
		PaymentMethod: entity.PaymentTarjeta,
	})
	require.NoError(t, err)
	assert.True(t, sale.Tax.IsZero())
	assert.True(t, sale.Total.Equal(d("50")))
}

func TestCheckout_FolioConsecutivoPorSucursal(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	first, _, err := e.checkout("1", entity.PaymentTarjeta, "0")
	require.NoError(t, err)
	second, _, err := e.checkout("1", entity.PaymentTarjeta, "0")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.FolioNumber)
	assert.Equal(t, int64(2), second.FolioNumber)
	assert.Equal(t, "A-000001", first.Folio)
	assert.Equal(t, "A-000002", second.Folio)
}

func TestCheckout_TurnoCerradoRechazado(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	shiftRepo := memory.NewShiftRepository(e.store)
	shift, err := shiftRepo.GetByID(shiftID)
	require.NoError(t, err)
	shift.Status = entity.ShiftCerrado
	require.NoError(t, shiftRepo.Update(shift))

	_, _, err = e.checkout("1", entity.PaymentTarjeta, "0")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Cancelar dos veces retorna Conflict y no duplica la reversión.
func TestCancel_Idempotencia(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	sale, _, err := e.checkout("4", entity.PaymentTarjeta, "0")
	require.NoError(t, err)

	_, err = e.uc.Cancel(context.Background(), sale.ID, "error de captura", cashierID)
	require.NoError(t, err)
	_, err = e.uc.Cancel(context.Background(), sale.ID, "error de captura", cashierID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.True(t, e.stockOf(t, prodA).Quantity.Equal(d("10")))
	assert.Len(t, e.movementsOf(t, prodA), 2, "una venta y una reversión, nada más")
}

func TestCancel_VentaInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Cancel(context.Background(), "no-existe", "motivo", cashierID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos checkouts simultáneos de 6 sobre 10: exactamente uno gana,
// el stock termina en 4 y nunca queda negativo.
func TestCheckout_ConcurrenciaNoSobrevende(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("10"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = e.checkout("6", entity.PaymentTarjeta, "0")
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactamente un checkout gana")
	assert.Equal(t, 1, insufficient, "el perdedor observa el stock ya debitado")

	rec := e.stockOf(t, prodA)
	assert.True(t, rec.Quantity.Equal(d("4")), "stock final consistente con un solo débito: %s", rec.Quantity)
	assert.Len(t, e.movementsOf(t, prodA), 1)
}

// Folios bajo concurrencia: sin duplicados.
func TestCheckout_FoliosConcurrentesSinColision(t *testing.T) {
	e := newEnv(t)
	e.store.SeedStock(branchID, prodA, d("100"))

	const n = 10
	var wg sync.WaitGroup
	folios := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sale, _, err := e.checkout("1", entity.PaymentTarjeta, "0")
			if err == nil {
				folios[i] = sale.FolioNumber
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, f := range folios {
		require.NotZero(t, f)
		assert.False(t, seen[f], "folio duplicado: %d", f)
		seen[f] = true
	}
}
