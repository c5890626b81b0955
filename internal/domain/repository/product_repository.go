package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// ProductRepository puerto de solo lectura sobre el catálogo de productos
// (el catálogo lo administra otro sistema).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
