package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El catálogo es administrado por otro
// sistema; este núcleo lo lee para precios y tasas de impuesto, nunca lo modifica.
type Product struct {
	ID              string
	SKU             string
	Name            string
	Price           decimal.Decimal
	Taxable         bool
	TaxRateOverride *decimal.Decimal // nil = usar la tasa por defecto de la sucursal
	CreatedAt       time.Time
}
