package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// BranchRepository puerto de solo lectura sobre sucursales.
type BranchRepository interface {
	GetByID(id string) (*entity.Branch, error)
}
