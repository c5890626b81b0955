package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo snapshot de stock por sucursal+producto sobre PostgreSQL.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func zeroRecord(branchID, productID string) *entity.StockRecord {
	return &entity.StockRecord{
		BranchID:  branchID,
		ProductID: productID,
		Quantity:  decimal.Zero,
		Reserved:  decimal.Zero,
	}
}

// Get obtiene el stock actual de un producto en una sucursal.
func (r *StockRepo) Get(branchID, productID string) (*entity.StockRecord, error) {
	query := `
		SELECT sucursal_id, producto_id, cantidad, reservado, updated_at
		FROM registros_stock WHERE sucursal_id = $1 AND producto_id = $2`
	var s entity.StockRecord
	err := r.q.QueryRow(context.Background(), query, branchID, productID).Scan(
		&s.BranchID, &s.ProductID, &s.Quantity, &s.Reserved, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroRecord(branchID, productID), nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock bloqueando la fila (SELECT FOR UPDATE). Si el
// registro no existe primero lo crea en cero: sin fila no hay lock que tomar, y
// dos primeros movimientos concurrentes partirían ambos de cero; con la semilla,
// el segundo queda bloqueado hasta que el primero haga commit.
func (r *StockRepo) GetForUpdate(branchID, productID string) (*entity.StockRecord, error) {
	seed := `
		INSERT INTO registros_stock (sucursal_id, producto_id, cantidad, reservado, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (sucursal_id, producto_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), seed, branchID, productID); err != nil {
		return nil, fmt.Errorf("seed stock record: %w", err)
	}
	query := `
		SELECT sucursal_id, producto_id, cantidad, reservado, updated_at
		FROM registros_stock WHERE sucursal_id = $1 AND producto_id = $2
		FOR UPDATE`
	var s entity.StockRecord
	err := r.q.QueryRow(context.Background(), query, branchID, productID).Scan(
		&s.BranchID, &s.ProductID, &s.Quantity, &s.Reserved, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza cantidad y reservado (por sucursal y producto).
func (r *StockRepo) Upsert(record *entity.StockRecord) error {
	query := `
		INSERT INTO registros_stock (sucursal_id, producto_id, cantidad, reservado, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (sucursal_id, producto_id)
		DO UPDATE SET cantidad = EXCLUDED.cantidad, reservado = EXCLUDED.reservado, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		record.BranchID, record.ProductID, record.Quantity, record.Reserved,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}
