package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo asigna consecutivos de folio por sucursal y serie sobre PostgreSQL.
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

// Next incrementa y devuelve el siguiente número en una sola sentencia: el
// upsert atómico garantiza que dos transacciones concurrentes nunca reciban el
// mismo folio (la segunda espera el lock de fila de la primera).
func (r *FolioRepo) Next(branchID, series string) (int64, error) {
	query := `
		INSERT INTO folios (sucursal_id, serie, ultimo)
		VALUES ($1, $2, 1)
		ON CONFLICT (sucursal_id, serie)
		DO UPDATE SET ultimo = folios.ultimo + 1
		RETURNING ultimo`
	var next int64
	if err := r.q.QueryRow(context.Background(), query, branchID, series).Scan(&next); err != nil {
		return 0, fmt.Errorf("next folio: %w", err)
	}
	return next, nil
}
