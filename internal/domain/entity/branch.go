package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch representa una sucursal. Igual que Product, es propiedad de otro sistema:
// aquí solo se lee su tasa de impuesto por defecto.
type Branch struct {
	ID             string
	Name           string
	DefaultTaxRate decimal.Decimal
	CreatedAt      time.Time
}
