// Package shift implementa el ciclo de vida de turnos de caja: apertura,
// movimientos manuales de efectivo y cierre con arqueo. Lee ventas completadas
// del procesador de ventas (vía su referencia de turno) pero nunca muta stock.
package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// Thresholds parámetros de negocio del turno (configuración).
type Thresholds struct {
	// CashAuthThreshold monto a partir del cual un movimiento manual requiere
	// autorizador. Validado aquí, del lado del servidor, no en el cliente.
	CashAuthThreshold decimal.Decimal
	// VarianceWarnPct / VarianceCriticalPct clasifican el desvío del arqueo.
	VarianceWarnPct     decimal.Decimal
	VarianceCriticalPct decimal.Decimal
}

// DefaultThresholds valores de negocio por defecto.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CashAuthThreshold:   decimal.NewFromInt(1000),
		VarianceWarnPct:     decimal.NewFromInt(1),
		VarianceCriticalPct: decimal.NewFromInt(5),
	}
}

// ManagerUseCase administra turnos de caja.
type ManagerUseCase struct {
	txRunner   ShiftTxRunner
	shiftRepo  repository.ShiftRepository
	saleRepo   repository.SaleRepository
	branchRepo repository.BranchRepository
	thresholds Thresholds
}

// NewManagerUseCase construye el caso de uso.
func NewManagerUseCase(
	txRunner ShiftTxRunner,
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	branchRepo repository.BranchRepository,
	thresholds Thresholds,
) *ManagerUseCase {
	if thresholds.CashAuthThreshold.IsZero() {
		thresholds = DefaultThresholds()
	}
	return &ManagerUseCase{
		txRunner:   txRunner,
		shiftRepo:  shiftRepo,
		saleRepo:   saleRepo,
		branchRepo: branchRepo,
		thresholds: thresholds,
	}
}

// OpenInput entrada para abrir un turno.
type OpenInput struct {
	TillID       string
	BranchID     string
	CashierID    string
	Type         string
	OpeningFloat decimal.Decimal
}

// Open abre un turno. Falla con ErrConflict si la caja ya tiene un turno abierto:
// se verifica antes de crear y además el repositorio lo garantiza bajo carrera
// (índice único parcial sobre turnos abiertos).
func (uc *ManagerUseCase) Open(ctx context.Context, input OpenInput) (*entity.Shift, error) {
	if input.TillID == "" || input.BranchID == "" || input.CashierID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.OpeningFloat.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if branch, err := uc.branchRepo.GetByID(input.BranchID); err != nil || branch == nil {
		return nil, domain.ErrNotFound
	}
	if open, err := uc.shiftRepo.GetOpenByTill(input.TillID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, domain.ErrConflict
	}

	shift := &entity.Shift{
		ID:           uuid.New().String(),
		TillID:       input.TillID,
		BranchID:     input.BranchID,
		CashierID:    input.CashierID,
		Type:         input.Type,
		OpeningFloat: input.OpeningFloat,
		Status:       entity.ShiftAbierto,
		OpenedAt:     time.Now(),
	}
	if err := uc.shiftRepo.Create(shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// CashMovementInput entrada para un movimiento manual de caja.
type CashMovementInput struct {
	ShiftID      string
	Type         string // ingreso | retiro
	Amount       decimal.Decimal
	Concept      string
	AuthorizedBy string
	ActorID      string
}

// RegisterCashMovement registra un ingreso o retiro manual sobre un turno abierto.
// Los montos por encima del umbral configurado exigen autorizador no vacío
// (ErrAuthorizationRequired); la regla vive en el servidor. La validación de
// estado y la inserción comparten transacción bajo el lock de fila del turno: un
// cierre concurrente no puede dejar fuera del corte un movimiento ya aceptado.
func (uc *ManagerUseCase) RegisterCashMovement(ctx context.Context, input CashMovementInput) (*entity.CashMovement, error) {
	if input.ShiftID == "" || input.Concept == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Type != entity.CashIngreso && input.Type != entity.CashRetiro {
		return nil, domain.ErrInvalidInput
	}
	if !input.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if input.Amount.GreaterThan(uc.thresholds.CashAuthThreshold) && input.AuthorizedBy == "" {
		return nil, domain.ErrAuthorizationRequired
	}

	var movement *entity.CashMovement
	err := uc.txRunner.RunShift(ctx, func(
		shiftRepo repository.ShiftRepository,
		_ repository.SaleRepository,
	) error {
		shift, err := shiftRepo.GetByIDForUpdate(input.ShiftID)
		if err != nil {
			return err
		}
		if shift == nil {
			return domain.ErrNotFound
		}
		if shift.Status != entity.ShiftAbierto {
			return domain.ErrConflict
		}

		movement = &entity.CashMovement{
			ID:           uuid.New().String(),
			ShiftID:      shift.ID,
			Type:         input.Type,
			Amount:       input.Amount,
			Concept:      input.Concept,
			AuthorizedBy: input.AuthorizedBy,
			CreatedAt:    time.Now(),
			CreatedBy:    input.ActorID,
		}
		return shiftRepo.CreateCashMovement(movement)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// CloseInput entrada del cierre de turno.
type CloseInput struct {
	ShiftID       string
	Denominations []entity.DenominationCount
	Observations  string
	ActorID       string
}

// Close cierra el turno y calcula el arqueo en una transacción:
//
//	esperado = fondo inicial + ventas en efectivo + ingresos - retiros
//	contado  = Σ(valor de denominación × cantidad)
//	desvío   = contado - esperado
//
// Las ventas se suman exclusivamente por su referencia de turno (ventas
// completadas; las canceladas no cuentan). Cerrar un turno ya cerrado retorna
// ErrConflict y no recalcula nada.
func (uc *ManagerUseCase) Close(ctx context.Context, input CloseInput) (*entity.Shift, error) {
	if input.ShiftID == "" {
		return nil, domain.ErrInvalidInput
	}
	counted := decimal.Zero
	for _, dc := range input.Denominations {
		if dc.Value.IsNegative() || dc.Count < 0 {
			return nil, domain.ErrInvalidInput
		}
		counted = counted.Add(dc.Value.Mul(decimal.NewFromInt(dc.Count)))
	}

	var closed *entity.Shift
	err := uc.txRunner.RunShift(ctx, func(
		shiftRepo repository.ShiftRepository,
		saleRepo repository.SaleRepository,
	) error {
		shift, err := shiftRepo.GetByIDForUpdate(input.ShiftID)
		if err != nil {
			return err
		}
		if shift == nil {
			return domain.ErrNotFound
		}
		if shift.Status != entity.ShiftAbierto {
			return domain.ErrConflict
		}

		totals, err := saleRepo.TotalsByShift(shift.ID)
		if err != nil {
			return err
		}
		movements, err := shiftRepo.ListCashMovements(shift.ID)
		if err != nil {
			return err
		}
		income, withdrawals := decimal.Zero, decimal.Zero
		for _, m := range movements {
			switch m.Type {
			case entity.CashIngreso:
				income = income.Add(m.Amount)
			case entity.CashRetiro:
				withdrawals = withdrawals.Add(m.Amount)
			}
		}

		now := time.Now()
		shift.CashSales = totals[entity.PaymentEfectivo]
		shift.CardSales = totals[entity.PaymentTarjeta]
		shift.TransferSales = totals[entity.PaymentTransferencia]
		shift.Income = income
		shift.Withdrawals = withdrawals
		shift.ExpectedCash = shift.OpeningFloat.Add(shift.CashSales).Add(income).Sub(withdrawals)
		shift.CountedCash = counted
		shift.Variance = counted.Sub(shift.ExpectedCash)
		shift.VariancePct = variancePct(shift.Variance, shift.ExpectedCash)
		shift.VarianceClass = uc.classifyVariance(shift.VariancePct)
		shift.Observations = input.Observations
		shift.Status = entity.ShiftCerrado
		shift.ClosedAt = &now
		if err := shiftRepo.Update(shift); err != nil {
			return err
		}
		closed = shift
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// GetShift obtiene un turno con sus movimientos de caja.
func (uc *ManagerUseCase) GetShift(ctx context.Context, id string) (*entity.Shift, []*entity.CashMovement, error) {
	shift, err := uc.shiftRepo.GetByID(id)
	if err != nil || shift == nil {
		return nil, nil, domain.ErrNotFound
	}
	movements, err := uc.shiftRepo.ListCashMovements(id)
	if err != nil {
		return nil, nil, err
	}
	return shift, movements, nil
}

func variancePct(variance, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return variance.Div(expected).Mul(decimal.NewFromInt(100)).Round(2)
}

func (uc *ManagerUseCase) classifyVariance(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.GreaterThanOrEqual(uc.thresholds.VarianceCriticalPct):
		return entity.VarianceCritico
	case abs.GreaterThanOrEqual(uc.thresholds.VarianceWarnPct):
		return entity.VarianceAdvertencia
	default:
		return entity.VarianceNormal
	}
}
