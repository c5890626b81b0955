package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// ShiftRepository define el puerto de persistencia de turnos de caja.
type ShiftRepository interface {
	// Create persiste un turno nuevo. Debe retornar domain.ErrConflict si la caja
	// ya tiene un turno abierto (índice único parcial en PostgreSQL).
	Create(shift *entity.Shift) error
	GetByID(id string) (*entity.Shift, error)
	GetByIDForUpdate(id string) (*entity.Shift, error)
	GetOpenByTill(tillID string) (*entity.Shift, error)
	Update(shift *entity.Shift) error
	CreateCashMovement(movement *entity.CashMovement) error
	ListCashMovements(shiftID string) ([]*entity.CashMovement, error)
}
