package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo persistencia de turnos de caja sobre PostgreSQL.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `id, caja_id, sucursal_id, cajero_id, tipo, fondo_inicial, estado,
	opened_at, closed_at, ventas_efectivo, ventas_tarjeta, ventas_transferencia,
	ingresos, retiros, efectivo_esperado, efectivo_contado, desvio, desvio_pct,
	desvio_clase, observaciones`

// Create persiste un turno nuevo. El índice único parcial sobre turnos abiertos
// por caja convierte la carrera de doble apertura en ErrConflict.
func (r *ShiftRepo) Create(shift *entity.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.New().String()
	}
	query := `
		INSERT INTO turnos (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		shift.ID, shift.TillID, shift.BranchID, shift.CashierID, shift.Type,
		shift.OpeningFloat, shift.Status, shift.OpenedAt, shift.ClosedAt,
		shift.CashSales, shift.CardSales, shift.TransferSales,
		shift.Income, shift.Withdrawals, shift.ExpectedCash, shift.CountedCash,
		shift.Variance, shift.VariancePct, shift.VarianceClass, shift.Observations,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// GetByID obtiene un turno por ID. Retorna nil, nil si no existe.
func (r *ShiftRepo) GetByID(id string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM turnos WHERE id = $1`
	return r.scanShift(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene el turno bloqueando la fila (SELECT FOR UPDATE).
func (r *ShiftRepo) GetByIDForUpdate(id string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM turnos WHERE id = $1 FOR UPDATE`
	return r.scanShift(r.q.QueryRow(context.Background(), query, id))
}

// GetOpenByTill obtiene el turno abierto de una caja, si existe.
func (r *ShiftRepo) GetOpenByTill(tillID string) (*entity.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM turnos WHERE caja_id = $1 AND estado = $2`
	return r.scanShift(r.q.QueryRow(context.Background(), query, tillID, entity.ShiftAbierto))
}

func (r *ShiftRepo) scanShift(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	err := row.Scan(
		&s.ID, &s.TillID, &s.BranchID, &s.CashierID, &s.Type,
		&s.OpeningFloat, &s.Status, &s.OpenedAt, &s.ClosedAt,
		&s.CashSales, &s.CardSales, &s.TransferSales,
		&s.Income, &s.Withdrawals, &s.ExpectedCash, &s.CountedCash,
		&s.Variance, &s.VariancePct, &s.VarianceClass, &s.Observations,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shift: %w", err)
	}
	return &s, nil
}

// Update persiste el turno (cierre con totales congelados).
func (r *ShiftRepo) Update(shift *entity.Shift) error {
	query := `
		UPDATE turnos
		SET estado = $2, closed_at = $3, ventas_efectivo = $4, ventas_tarjeta = $5,
		    ventas_transferencia = $6, ingresos = $7, retiros = $8,
		    efectivo_esperado = $9, efectivo_contado = $10, desvio = $11,
		    desvio_pct = $12, desvio_clase = $13, observaciones = $14
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		shift.ID, shift.Status, shift.ClosedAt, shift.CashSales, shift.CardSales,
		shift.TransferSales, shift.Income, shift.Withdrawals,
		shift.ExpectedCash, shift.CountedCash, shift.Variance,
		shift.VariancePct, shift.VarianceClass, shift.Observations,
	)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// CreateCashMovement persiste un movimiento manual de efectivo.
func (r *ShiftRepo) CreateCashMovement(movement *entity.CashMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos_caja (id, turno_id, tipo, monto, concepto, autorizado_por, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	authorizedBy := (*string)(nil)
	if movement.AuthorizedBy != "" {
		authorizedBy = &movement.AuthorizedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ShiftID, movement.Type, movement.Amount,
		movement.Concept, authorizedBy, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create cash movement: %w", err)
	}
	return nil
}

// ListCashMovements lista los movimientos de efectivo de un turno en orden cronológico.
func (r *ShiftRepo) ListCashMovements(shiftID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, turno_id, tipo, monto, concepto, autorizado_por, created_at, created_by
		FROM movimientos_caja WHERE turno_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		var authorizedBy *string
		if err := rows.Scan(&m.ID, &m.ShiftID, &m.Type, &m.Amount, &m.Concept,
			&authorizedBy, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		if authorizedBy != nil {
			m.AuthorizedBy = *authorizedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
