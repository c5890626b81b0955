package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// TransferRepository define el puerto de persistencia de traslados entre sucursales.
type TransferRepository interface {
	Create(transfer *entity.Transfer) error
	GetByID(id string) (*entity.Transfer, error)
	// Transition persiste el traslado solo si su estado en base sigue siendo
	// expectedStatus (UPDATE ... WHERE estado = $expected). Si otra transición ganó
	// la carrera retorna domain.ErrConflict sin modificar nada.
	Transition(transfer *entity.Transfer, expectedStatus string) error
}
