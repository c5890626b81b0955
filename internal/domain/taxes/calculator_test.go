package taxes_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/taxes"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestCalculate_LineaSimple(t *testing.T) {
	// 3 unidades a 100.00 con IVA 16%
	got, err := taxes.Calculate(d("100"), d("3"), decimal.Zero, d("0.16"))
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(d("300")), "subtotal: %s", got.Subtotal)
	assert.True(t, got.Tax.Equal(d("48")), "impuesto: %s", got.Tax)
	assert.True(t, got.Total.Equal(d("348")), "total: %s", got.Total)
}

func TestCalculate_DescuentoAntesDeImpuesto(t *testing.T) {
	// El descuento reduce la base gravable
	got, err := taxes.Calculate(d("50"), d("2"), d("20"), d("0.16"))
	require.NoError(t, err)
	assert.True(t, got.Subtotal.Equal(d("80")))
	assert.True(t, got.Tax.Equal(d("12.8")))
	assert.True(t, got.Total.Equal(d("92.8")))
}

func TestCalculate_TasaComoPorcentaje(t *testing.T) {
	// 16 se interpreta como 16%, no como 1600%
	pct, err := taxes.Calculate(d("100"), d("1"), decimal.Zero, d("16"))
	require.NoError(t, err)
	frac, err2 := taxes.Calculate(d("100"), d("1"), decimal.Zero, d("0.16"))
	require.NoError(t, err2)
	assert.True(t, pct.Tax.Equal(frac.Tax))
	assert.True(t, pct.Total.Equal(frac.Total))
}

func TestCalculate_EntradasInvalidas(t *testing.T) {
	cases := []struct {
		name                           string
		price, qty, discount, rate     decimal.Decimal
	}{
		{"cantidad cero", d("10"), decimal.Zero, decimal.Zero, d("0.16")},
		{"cantidad negativa", d("10"), d("-1"), decimal.Zero, d("0.16")},
		{"precio negativo", d("-10"), d("1"), decimal.Zero, d("0.16")},
		{"descuento negativo", d("10"), d("1"), d("-5"), d("0.16")},
		{"tasa negativa", d("10"), d("1"), decimal.Zero, d("-0.16")},
		{"descuento mayor al bruto", d("10"), d("1"), d("11"), d("0.16")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := taxes.Calculate(tc.price, tc.qty, tc.discount, tc.rate)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestApplicableRate_ProductoExento(t *testing.T) {
	p := &entity.Product{Taxable: false}
	b := &entity.Branch{DefaultTaxRate: d("0.16")}
	assert.True(t, taxes.ApplicableRate(p, b).IsZero())
}

func TestApplicableRate_OverrideDelProducto(t *testing.T) {
	override := d("0.08")
	p := &entity.Product{Taxable: true, TaxRateOverride: &override}
	b := &entity.Branch{DefaultTaxRate: d("0.16")}
	assert.True(t, taxes.ApplicableRate(p, b).Equal(d("0.08")))
}

func TestApplicableRate_TasaDeSucursal(t *testing.T) {
	p := &entity.Product{Taxable: true}
	b := &entity.Branch{DefaultTaxRate: d("16")} // porcentaje
	assert.True(t, taxes.ApplicableRate(p, b).Equal(d("0.16")))
}
