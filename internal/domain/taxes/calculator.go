// Package taxes implementa el cálculo de impuestos de línea: función pura,
// sin estado ni acceso a datos.
package taxes

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// LineTotals es el resultado del cálculo para una línea.
type LineTotals struct {
	Subtotal decimal.Decimal // precio*cantidad - descuento, antes de impuesto
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// NormalizeRate acepta tasas como fracción (0.16) o porcentaje (16) y
// devuelve siempre la fracción.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(oneHundred)
	}
	return rate
}

// ApplicableRate resuelve la tasa de una línea: 0 si el producto no grava impuesto,
// el override del producto si existe, o la tasa por defecto de la sucursal.
func ApplicableRate(product *entity.Product, branch *entity.Branch) decimal.Decimal {
	if !product.Taxable {
		return decimal.Zero
	}
	if product.TaxRateOverride != nil {
		return NormalizeRate(*product.TaxRateOverride)
	}
	return NormalizeRate(branch.DefaultTaxRate)
}

// Calculate computa subtotal, impuesto y total de una línea.
// El descuento es un monto absoluto que se resta antes de aplicar el impuesto.
func Calculate(unitPrice, quantity, discount, rate decimal.Decimal) (LineTotals, error) {
	if unitPrice.IsNegative() || discount.IsNegative() || rate.IsNegative() {
		return LineTotals{}, domain.ErrInvalidInput
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return LineTotals{}, domain.ErrInvalidInput
	}
	gross := unitPrice.Mul(quantity)
	if discount.GreaterThan(gross) {
		return LineTotals{}, domain.ErrInvalidInput
	}
	subtotal := gross.Sub(discount)
	tax := subtotal.Mul(NormalizeRate(rate)).Round(2)
	return LineTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}
