package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas y líneas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, sucursal_id, turno_id, cajero_id, cliente_id, folio, folio_numero,
	subtotal, impuesto, descuento, total, metodo_pago, pagado, cambio, estado,
	created_at, cancelled_at, motivo_cancelacion`

// Create persiste una venta nueva.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ventas (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	customerID := (*string)(nil)
	if sale.CustomerID != "" {
		customerID = &sale.CustomerID
	}
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.BranchID, sale.ShiftID, sale.CashierID, customerID,
		sale.Folio, sale.FolioNumber, sale.Subtotal, sale.Tax, sale.Discount,
		sale.Total, sale.PaymentMethod, sale.AmountPaid, sale.Change, sale.Status,
		sale.CreatedAt, sale.CancelledAt, sale.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de venta.
func (r *SaleRepo) CreateLine(line *entity.SaleLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO venta_lineas (id, venta_id, producto_id, producto_nombre, precio_unitario, tasa_impuesto, cantidad, descuento, subtotal, impuesto, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.SaleID, line.ProductID, line.ProductName, line.UnitPrice,
		line.TaxRate, line.Quantity, line.Discount, line.Subtotal, line.Tax, line.Total,
	)
	if err != nil {
		return fmt.Errorf("create sale line: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID. Retorna nil, nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM ventas WHERE id = $1`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene la venta bloqueando la fila (SELECT FOR UPDATE).
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM ventas WHERE id = $1 FOR UPDATE`
	return r.scanSale(r.q.QueryRow(context.Background(), query, id))
}

func (r *SaleRepo) scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, cancelReason *string
	err := row.Scan(
		&s.ID, &s.BranchID, &s.ShiftID, &s.CashierID, &customerID,
		&s.Folio, &s.FolioNumber, &s.Subtotal, &s.Tax, &s.Discount,
		&s.Total, &s.PaymentMethod, &s.AmountPaid, &s.Change, &s.Status,
		&s.CreatedAt, &s.CancelledAt, &cancelReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if customerID != nil {
		s.CustomerID = *customerID
	}
	if cancelReason != nil {
		s.CancelReason = *cancelReason
	}
	return &s, nil
}

// GetLines obtiene las líneas de una venta en orden de inserción.
func (r *SaleRepo) GetLines(saleID string) ([]*entity.SaleLine, error) {
	query := `
		SELECT id, venta_id, producto_id, producto_nombre, precio_unitario, tasa_impuesto, cantidad, descuento, subtotal, impuesto, total
		FROM venta_lineas WHERE venta_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	defer rows.Close()
	var lines []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.ProductName,
			&l.UnitPrice, &l.TaxRate, &l.Quantity, &l.Discount,
			&l.Subtotal, &l.Tax, &l.Total); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// Update persiste la transición de estado de la venta (cancelación).
func (r *SaleRepo) Update(sale *entity.Sale) error {
	query := `
		UPDATE ventas
		SET estado = $2, cancelled_at = $3, motivo_cancelacion = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Status, sale.CancelledAt, sale.CancelReason,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

// TotalsByShift suma totales de ventas completadas del turno por método de pago.
func (r *SaleRepo) TotalsByShift(shiftID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT metodo_pago, COALESCE(SUM(total), 0)
		FROM ventas
		WHERE turno_id = $1 AND estado = $2
		GROUP BY metodo_pago`
	rows, err := r.q.Query(context.Background(), query, shiftID, entity.SaleCompletada)
	if err != nil {
		return nil, fmt.Errorf("totals by shift: %w", err)
	}
	defer rows.Close()
	totals := map[string]decimal.Decimal{
		entity.PaymentEfectivo:      decimal.Zero,
		entity.PaymentTarjeta:       decimal.Zero,
		entity.PaymentTransferencia: decimal.Zero,
	}
	for rows.Next() {
		var method string
		var total decimal.Decimal
		if err := rows.Scan(&method, &total); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		totals[method] = total
	}
	return totals, rows.Err()
}
