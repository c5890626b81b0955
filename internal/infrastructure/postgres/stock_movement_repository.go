package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de movimientos de stock sobre PostgreSQL.
// Solo inserta y lee: los movimientos nunca se modifican.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos_stock (id, sucursal_id, producto_id, tipo, delta, cantidad_antes, cantidad_despues, referencia_id, motivo, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	referenceID := (*string)(nil)
	if movement.ReferenceID != "" {
		referenceID = &movement.ReferenceID
	}
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.BranchID, movement.ProductID, movement.Type,
		movement.Delta, movement.QuantityBefore, movement.QuantityAfter,
		referenceID, movement.Reason, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto en una sucursal, más reciente
// primero, con rango de fechas opcional.
func (r *StockMovementRepo) ListByProduct(branchID, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, sucursal_id, producto_id, tipo, delta, cantidad_antes, cantidad_despues, referencia_id, motivo, created_at, created_by
		FROM movimientos_stock WHERE sucursal_id = $1 AND producto_id = $2`
	args := []any{branchID, productID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var referenceID, createdBy *string
		if err := rows.Scan(&m.ID, &m.BranchID, &m.ProductID, &m.Type, &m.Delta,
			&m.QuantityBefore, &m.QuantityAfter, &referenceID, &m.Reason,
			&m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if referenceID != nil {
			m.ReferenceID = *referenceID
		}
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
