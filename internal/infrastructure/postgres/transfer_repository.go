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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persistencia de traslados entre sucursales sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, producto_id, cantidad, sucursal_origen, sucursal_destino,
	estado, motivo, motivo_rechazo, solicitado_por, aprobado_por, enviado_por,
	recibido_por, requested_at, approved_at, shipped_at, received_at, closed_at`

// Create persiste un traslado recién solicitado.
func (r *TransferRepo) Create(transfer *entity.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO traslados (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		transfer.ID, transfer.ProductID, transfer.Quantity,
		transfer.OriginBranchID, transfer.DestBranchID, transfer.Status,
		transfer.Reason, transfer.RejectionReason,
		transfer.RequestedBy, nullable(transfer.ApprovedBy), nullable(transfer.ShippedBy),
		nullable(transfer.ReceivedBy), transfer.RequestedAt,
		transfer.ApprovedAt, transfer.ShippedAt, transfer.ReceivedAt, transfer.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID. Retorna nil, nil si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM traslados WHERE id = $1`
	var t entity.Transfer
	var rejectionReason, approvedBy, shippedBy, receivedBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.ProductID, &t.Quantity, &t.OriginBranchID, &t.DestBranchID,
		&t.Status, &t.Reason, &rejectionReason, &t.RequestedBy,
		&approvedBy, &shippedBy, &receivedBy, &t.RequestedAt,
		&t.ApprovedAt, &t.ShippedAt, &t.ReceivedAt, &t.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if rejectionReason != nil {
		t.RejectionReason = *rejectionReason
	}
	if approvedBy != nil {
		t.ApprovedBy = *approvedBy
	}
	if shippedBy != nil {
		t.ShippedBy = *shippedBy
	}
	if receivedBy != nil {
		t.ReceivedBy = *receivedBy
	}
	return &t, nil
}

// Transition actualiza el traslado solo si su estado en base sigue siendo
// expectedStatus. Si otra transición ganó la carrera retorna ErrConflict.
func (r *TransferRepo) Transition(transfer *entity.Transfer, expectedStatus string) error {
	query := `
		UPDATE traslados
		SET estado = $3, motivo_rechazo = $4, aprobado_por = $5, enviado_por = $6,
		    recibido_por = $7, approved_at = $8, shipped_at = $9, received_at = $10,
		    closed_at = $11
		WHERE id = $1 AND estado = $2`
	tag, err := r.q.Exec(context.Background(), query,
		transfer.ID, expectedStatus, transfer.Status, transfer.RejectionReason,
		nullable(transfer.ApprovedBy), nullable(transfer.ShippedBy), nullable(transfer.ReceivedBy),
		transfer.ApprovedAt, transfer.ShippedAt, transfer.ReceivedAt, transfer.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("transition transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
