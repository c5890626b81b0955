package shift_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/shift"
	"github.com/jhoicas/PuntoVenta-api/internal/application/stock"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
)

const (
	branchID  = "suc-centro"
	tillID    = "caja-1"
	cashierID = "cajero-1"
	prodID    = "prod-cafe"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type env struct {
	store    *memory.Store
	uc       *shift.ManagerUseCase
	checkout *sales.CheckoutUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	store.SeedBranch(&entity.Branch{ID: branchID, Name: "Sucursal Centro", DefaultTaxRate: d("0")})
	store.SeedProduct(&entity.Product{ID: prodID, Name: "Café molido", Price: d("100"), Taxable: false})
	store.SeedStock(branchID, prodID, d("1000"))

	txRunner := memory.NewTxRunner(store)
	ledger := stock.NewLedgerUseCase(
		txRunner,
		memory.NewProductRepository(store),
		memory.NewBranchRepository(store),
		memory.NewStockMovementRepository(store),
		memory.NewStockRepository(store),
	)
	checkout := sales.NewCheckoutUseCase(
		txRunner,
		ledger,
		memory.NewProductRepository(store),
		memory.NewBranchRepository(store),
		memory.NewShiftRepository(store),
		memory.NewSaleRepository(store),
		"A",
	)
	uc := shift.NewManagerUseCase(
		txRunner,
		memory.NewShiftRepository(store),
		memory.NewSaleRepository(store),
		memory.NewBranchRepository(store),
		shift.DefaultThresholds(),
	)
	return &env{store: store, uc: uc, checkout: checkout}
}

func (e *env) open(t *testing.T, openingFloat string) *entity.Shift {
	t.Helper()
	s, err := e.uc.Open(context.Background(), shift.OpenInput{
		TillID: tillID, BranchID: branchID, CashierID: cashierID,
		OpeningFloat: d(openingFloat),
	})
	require.NoError(t, err)
	return s
}

// venta simple: una unidad de 100 sin impuesto, total 100
func (e *env) sell(t *testing.T, shiftID, payment string) {
	t.Helper()
	_, _, err := e.checkout.Checkout(context.Background(), sales.CheckoutInput{
		BranchID: branchID, ShiftID: shiftID, CashierID: cashierID,
		Lines:         []sales.CheckoutLine{{ProductID: prodID, Quantity: d("1")}},
		PaymentMethod: payment,
		AmountPaid:    d("100"),
	})
	require.NoError(t, err)
}

// Cierre de un turno con ventas reales y retiro, contado exacto.
func TestClose_ArqueoCuadrado(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	// 3 ventas en efectivo (300) y una con tarjeta (100, no cuenta en efectivo)
	e.sell(t, s.ID, entity.PaymentEfectivo)
	e.sell(t, s.ID, entity.PaymentEfectivo)
	e.sell(t, s.ID, entity.PaymentEfectivo)
	e.sell(t, s.ID, entity.PaymentTarjeta)

	_, err := e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashRetiro, Amount: d("200"),
		Concept: "depósito a bóveda", ActorID: cashierID,
	})
	require.NoError(t, err)

	// esperado = 500 + 300 - 200 = 600; contado exacto
	closed, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID: s.ID,
		Denominations: []entity.DenominationCount{
			{Value: d("500"), Count: 1},
			{Value: d("100"), Count: 1},
		},
		ActorID: cashierID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftCerrado, closed.Status)
	assert.True(t, closed.CashSales.Equal(d("300")))
	assert.True(t, closed.CardSales.Equal(d("100")))
	assert.True(t, closed.ExpectedCash.Equal(d("600")))
	assert.True(t, closed.CountedCash.Equal(d("600")))
	assert.True(t, closed.Variance.IsZero())
	assert.Equal(t, entity.VarianceNormal, closed.VarianceClass)
	require.NotNil(t, closed.ClosedAt)
}

// El desvío del arqueo se clasifica por porcentaje sobre el esperado.
func TestClose_ClasificacionDeDesvio(t *testing.T) {
	cases := []struct {
		name     string
		counted  string
		expected string // esperado = 1000 (solo fondo inicial)
		class    string
	}{
		{"cuadrado", "1000", "1000", entity.VarianceNormal},
		{"faltante leve", "995", "1000", entity.VarianceNormal},
		{"faltante advertencia", "985", "1000", entity.VarianceAdvertencia},
		{"sobrante advertencia", "1015", "1000", entity.VarianceAdvertencia},
		{"faltante critico", "940", "1000", entity.VarianceCritico},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			s := e.open(t, "1000")
			closed, err := e.uc.Close(context.Background(), shift.CloseInput{
				ShiftID:       s.ID,
				Denominations: []entity.DenominationCount{{Value: d(tc.counted), Count: 1}},
			})
			require.NoError(t, err)
			assert.True(t, closed.ExpectedCash.Equal(d(tc.expected)))
			assert.Equal(t, tc.class, closed.VarianceClass, "desvío %s", closed.VariancePct)
		})
	}
}

func TestOpen_CajaYaAbierta(t *testing.T) {
	e := newEnv(t)
	e.open(t, "500")

	_, err := e.uc.Open(context.Background(), shift.OpenInput{
		TillID: tillID, BranchID: branchID, CashierID: "otro-cajero",
		OpeningFloat: d("300"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOpen_FondoNegativoRechazado(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Open(context.Background(), shift.OpenInput{
		TillID: tillID, BranchID: branchID, CashierID: cashierID,
		OpeningFloat: d("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClose_DobleCierre(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	_, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("500"), Count: 1}},
	})
	require.NoError(t, err)

	_, err = e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("500"), Count: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Montos por encima del umbral exigen autorizador; la regla vive en el servidor.
func TestRegisterCashMovement_UmbralDeAutorizacion(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	_, err := e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashRetiro, Amount: d("1500"),
		Concept: "retiro grande", ActorID: cashierID,
	})
	assert.ErrorIs(t, err, domain.ErrAuthorizationRequired)

	mov, err := e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashRetiro, Amount: d("1500"),
		Concept: "retiro grande", AuthorizedBy: "gerente-1", ActorID: cashierID,
	})
	require.NoError(t, err)
	assert.Equal(t, "gerente-1", mov.AuthorizedBy)

	// en el umbral exacto no se exige autorizador
	_, err = e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashIngreso, Amount: d("1000"),
		Concept: "cambio de bóveda", ActorID: cashierID,
	})
	assert.NoError(t, err)
}

func TestRegisterCashMovement_TurnoCerrado(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")
	_, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("500"), Count: 1}},
	})
	require.NoError(t, err)

	_, err = e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashIngreso, Amount: d("50"),
		Concept: "tarde", ActorID: cashierID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Un checkout lanzado en paralelo con el cierre del turno o bien entra al
// corte o bien falla con conflicto; nunca queda una venta cobrada fuera del
// arqueo.
func TestClose_CarreraConCheckout(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	var saleErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, saleErr = e.checkout.Checkout(context.Background(), sales.CheckoutInput{
			BranchID: branchID, ShiftID: s.ID, CashierID: cashierID,
			Lines:         []sales.CheckoutLine{{ProductID: prodID, Quantity: d("1")}},
			PaymentMethod: entity.PaymentEfectivo,
			AmountPaid:    d("100"),
		})
	}()

	closed, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("500"), Count: 1}},
		ActorID:       cashierID,
	})
	<-done
	require.NoError(t, err)

	if saleErr != nil {
		assert.ErrorIs(t, saleErr, domain.ErrConflict)
		assert.True(t, closed.CashSales.IsZero(), "venta rechazada no debe sumar: %s", closed.CashSales)
	} else {
		assert.True(t, closed.CashSales.Equal(d("100")), "venta aceptada debe sumar: %s", closed.CashSales)
	}
}

// Lo mismo para un movimiento manual de caja: si se aceptó, el cierre lo
// refleja en el esperado; si el cierre ganó, el movimiento falla con conflicto.
func TestClose_CarreraConMovimientoDeCaja(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	var movErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, movErr = e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
			ShiftID: s.ID, Type: entity.CashRetiro, Amount: d("200"),
			Concept: "depósito a bóveda", ActorID: cashierID,
		})
	}()

	closed, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("500"), Count: 1}},
		ActorID:       cashierID,
	})
	<-done
	require.NoError(t, err)

	if movErr != nil {
		assert.ErrorIs(t, movErr, domain.ErrConflict)
		assert.True(t, closed.ExpectedCash.Equal(d("500")))
	} else {
		assert.True(t, closed.ExpectedCash.Equal(d("300")), "retiro aceptado debe restar: %s", closed.ExpectedCash)
	}
}

// Las ventas canceladas no suman al corte por método de pago.
func TestClose_VentaCanceladaNoSuma(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")

	e.sell(t, s.ID, entity.PaymentEfectivo)
	sale, _, err := e.checkout.Checkout(context.Background(), sales.CheckoutInput{
		BranchID: branchID, ShiftID: s.ID, CashierID: cashierID,
		Lines:         []sales.CheckoutLine{{ProductID: prodID, Quantity: d("1")}},
		PaymentMethod: entity.PaymentEfectivo,
		AmountPaid:    d("100"),
	})
	require.NoError(t, err)
	_, err = e.checkout.Cancel(context.Background(), sale.ID, "devolución", cashierID)
	require.NoError(t, err)

	closed, err := e.uc.Close(context.Background(), shift.CloseInput{
		ShiftID:       s.ID,
		Denominations: []entity.DenominationCount{{Value: d("100"), Count: 6}},
	})
	require.NoError(t, err)
	assert.True(t, closed.CashSales.Equal(d("100")), "solo la venta vigente: %s", closed.CashSales)
	assert.True(t, closed.ExpectedCash.Equal(d("600")))
}

func TestGetShift_ConMovimientos(t *testing.T) {
	e := newEnv(t)
	s := e.open(t, "500")
	_, err := e.uc.RegisterCashMovement(context.Background(), shift.CashMovementInput{
		ShiftID: s.ID, Type: entity.CashIngreso, Amount: d("50"),
		Concept: "morralla", ActorID: cashierID,
	})
	require.NoError(t, err)

	got, movs, err := e.uc.GetShift(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, "morralla", movs[0].Concept)
}
