package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateLine(line *entity.SaleLine) error
	GetByID(id string) (*entity.Sale, error)
	// GetByIDForUpdate bloquea la venta (SELECT FOR UPDATE) para la cancelación.
	GetByIDForUpdate(id string) (*entity.Sale, error)
	GetLines(saleID string) ([]*entity.SaleLine, error)
	// Update persiste la transición de estado (cancelación). Las ventas no admiten
	// otra mutación.
	Update(sale *entity.Sale) error
	// TotalsByShift suma los totales de ventas completadas del turno, agrupados por
	// método de pago. Las ventas canceladas no cuentan.
	TotalsByShift(shiftID string) (map[string]decimal.Decimal, error)
}
