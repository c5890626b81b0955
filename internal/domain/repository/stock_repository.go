package repository

import "github.com/jhoicas/PuntoVenta-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar el snapshot de stock
// por sucursal+producto. Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(branchID, productID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Si el registro
	// no existe devuelve uno en cero (creación perezosa al primer Upsert).
	GetForUpdate(branchID, productID string) (*entity.StockRecord, error)
	Upsert(record *entity.StockRecord) error
}
