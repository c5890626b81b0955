package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
)

const (
	testBranch  = "suc-norte"
	testProduct = "prod-refresco"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func newLedger(t *testing.T) (*stock.LedgerUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedBranch(&entity.Branch{ID: testBranch, Name: "Sucursal Norte", DefaultTaxRate: d("0.16")})
	store.SeedProduct(&entity.Product{ID: testProduct, Name: "Refresco 600ml", Price: d("18"), Taxable: true})
	uc := stock.NewLedgerUseCase(
		memory.NewTxRunner(store),
		memory.NewProductRepository(store),
		memory.NewBranchRepository(store),
		memory.NewStockMovementRepository(store),
		memory.NewStockRepository(store),
	)
	return uc, store
}

// requireInvariant verifica available = cantidad - reservado >= 0 tras cada operación.
func requireInvariant(t *testing.T, uc *stock.LedgerUseCase) {
	t.Helper()
	rec, err := uc.GetStock(context.Background(), testBranch, testProduct)
	require.NoError(t, err)
	assert.False(t, rec.Available().IsNegative(), "disponible negativo: %s", rec.Available())
	assert.False(t, rec.Quantity.IsNegative())
	assert.False(t, rec.Reserved.IsNegative())
}

func TestRegisterMovement_EntradaCreaRegistroPerezoso(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	mov, err := uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementEntrada, Quantity: d("10"), ActorID: "user-1",
	})
	require.NoError(t, err)
	assert.True(t, mov.QuantityBefore.IsZero(), "el registro nace en cero")
	assert.True(t, mov.QuantityAfter.Equal(d("10")))
	assert.True(t, mov.Delta.Equal(d("10")))

	rec, err := uc.GetStock(ctx, testBranch, testProduct)
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(d("10")))
	requireInvariant(t, uc)
}

// Dos primeras entradas simultáneas sobre un producto sin registro previo:
// ninguna pisa a la otra, el snapshot acumula ambas y el ledger conserva las dos.
func TestRegisterMovement_PrimerasEntradasConcurrentes(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	deltas := []string{"10", "7"}
	var wg sync.WaitGroup
	errs := make([]error, len(deltas))
	for i, qty := range deltas {
		wg.Add(1)
		go func(i int, qty string) {
			defer wg.Done()
			_, errs[i] = uc.RegisterMovement(ctx, stock.MovementInput{
				BranchID: testBranch, ProductID: testProduct,
				Type: entity.MovementEntrada, Quantity: d(qty), ActorID: "user-1",
			})
		}(i, qty)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	rec, err := uc.GetStock(ctx, testBranch, testProduct)
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(d("17")), "ambas entradas acumulan: %s", rec.Quantity)

	movs, err := uc.ListMovements(ctx, testBranch, testProduct, nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	// la más reciente parte de donde terminó la otra
	assert.True(t, movs[0].QuantityBefore.Equal(movs[1].QuantityAfter))
	assert.True(t, movs[1].QuantityBefore.IsZero())
	requireInvariant(t, uc)
}

func TestRegisterMovement_SalidaInsuficienteNoDejaMovimiento(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("5"))

	_, err := uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementSalida, Quantity: d("6"), Reason: "merma", ActorID: "user-1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, rec.Quantity.Equal(d("5")), "el stock no cambia en un rechazo")
	movs, _ := uc.ListMovements(ctx, testBranch, testProduct, nil, nil, 50, 0)
	assert.Empty(t, movs, "un rechazo no escribe en el ledger")
}

func TestRegisterMovement_SalidaDescuentaYRegistraAntesDespues(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("9"))

	mov, err := uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementSalida, Quantity: d("4"), Reason: "merma", ActorID: "user-1",
	})
	require.NoError(t, err)
	assert.True(t, mov.Delta.Equal(d("-4")))
	assert.True(t, mov.QuantityBefore.Equal(d("9")))
	assert.True(t, mov.QuantityAfter.Equal(d("5")))

	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, rec.Quantity.Equal(mov.QuantityAfter), "ledger y snapshot nunca divergen")
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input stock.MovementInput
		want  error
	}{
		{"tipo desconocido", stock.MovementInput{BranchID: testBranch, ProductID: testProduct, Type: "robo", Quantity: d("1")}, domain.ErrInvalidInput},
		{"venta directa prohibida", stock.MovementInput{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementVenta, Quantity: d("1")}, domain.ErrInvalidInput},
		{"cantidad cero", stock.MovementInput{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementEntrada, Quantity: decimal.Zero}, domain.ErrInvalidInput},
		{"salida sin motivo", stock.MovementInput{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementSalida, Quantity: d("1")}, domain.ErrInvalidInput},
		{"ajuste sin motivo", stock.MovementInput{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementAjuste, Delta: d("-2")}, domain.ErrInvalidInput},
		{"producto inexistente", stock.MovementInput{BranchID: testBranch, ProductID: "nope", Type: entity.MovementEntrada, Quantity: d("1")}, domain.ErrNotFound},
		{"sucursal inexistente", stock.MovementInput{BranchID: "nope", ProductID: testProduct, Type: entity.MovementEntrada, Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterMovement_AjusteConDeltaFirmado(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("10"))

	_, err := uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementAjuste, Delta: d("-3"), Reason: "conteo físico", ActorID: "user-1",
	})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementAjuste, Delta: d("1"), Reason: "conteo físico", ActorID: "user-1",
	})
	require.NoError(t, err)

	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, rec.Quantity.Equal(d("8")))
	requireInvariant(t, uc)
}

func TestReserve_RespetaDisponible(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("10"))

	require.NoError(t, uc.Reserve(ctx, testBranch, testProduct, d("7")))
	requireInvariant(t, uc)

	// Solo quedan 3 disponibles
	err := uc.Reserve(ctx, testBranch, testProduct, d("4"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, rec.Reserved.Equal(d("7")))
	assert.True(t, rec.Available().Equal(d("3")))
}

func TestReserve_BloqueaSalidasSobreLoReservado(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("10"))
	require.NoError(t, uc.Reserve(ctx, testBranch, testProduct, d("6")))

	// Quedan 4 disponibles: una salida de 5 debe rechazarse aunque haya 10 físicos
	_, err := uc.RegisterMovement(ctx, stock.MovementInput{
		BranchID: testBranch, ProductID: testProduct,
		Type: entity.MovementSalida, Quantity: d("5"), Reason: "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	requireInvariant(t, uc)
}

func TestRelease_NoPuedeExcederLaReserva(t *testing.T) {
	uc, store := newLedger(t)
	ctx := context.Background()
	store.SeedStock(testBranch, testProduct, d("10"))
	require.NoError(t, uc.Reserve(ctx, testBranch, testProduct, d("2")))

	err := uc.Release(ctx, testBranch, testProduct, d("3"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, uc.Release(ctx, testBranch, testProduct, d("2")))
	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, rec.Reserved.IsZero())
}

// TestLedger_Reconciliacion: la suma de deltas del ledger siempre iguala la
// cantidad actual del snapshot.
func TestLedger_Reconciliacion(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	steps := []stock.MovementInput{
		{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementEntrada, Quantity: d("20")},
		{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementSalida, Quantity: d("5"), Reason: "merma"},
		{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementAjuste, Delta: d("-2"), Reason: "conteo"},
		{BranchID: testBranch, ProductID: testProduct, Type: entity.MovementEntrada, Quantity: d("7")},
	}
	for _, in := range steps {
		_, err := uc.RegisterMovement(ctx, in)
		require.NoError(t, err)
	}

	movs, err := uc.ListMovements(ctx, testBranch, testProduct, nil, nil, 100, 0)
	require.NoError(t, err)
	require.Len(t, movs, len(steps))

	sum := decimal.Zero
	for _, m := range movs {
		sum = sum.Add(m.Delta)
		assert.True(t, m.QuantityAfter.Equal(m.QuantityBefore.Add(m.Delta)),
			"after = before + delta en cada fila del ledger")
	}
	rec, _ := uc.GetStock(ctx, testBranch, testProduct)
	assert.True(t, sum.Equal(rec.Quantity), "Σdeltas (%s) = cantidad actual (%s)", sum, rec.Quantity)
}
