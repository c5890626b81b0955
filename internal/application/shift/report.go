package shift

import (
	"context"
	"fmt"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// ReportPDFGenerator genera el reporte de arqueo de un turno cerrado.
type ReportPDFGenerator interface {
	GenerateShiftReportPDF(ctx context.Context, shift *entity.Shift, movements []*entity.CashMovement, branch *entity.Branch) ([]byte, error)
}

// DownloadReportPDF genera el reporte de arqueo. Solo está disponible para turnos
// cerrados: antes del cierre los totales todavía no existen.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el turno no existe.
//   - domain.ErrConflict         si el turno sigue abierto.
func (uc *ManagerUseCase) DownloadReportPDF(ctx context.Context, shiftID string, generator ReportPDFGenerator) (pdfBytes []byte, filename string, err error) {
	shift, err := uc.shiftRepo.GetByID(shiftID)
	if err != nil {
		return nil, "", fmt.Errorf("arqueo: obtener turno: %w", err)
	}
	if shift == nil {
		return nil, "", domain.ErrNotFound
	}
	if shift.Status != entity.ShiftCerrado {
		return nil, "", domain.ErrConflict
	}
	movements, err := uc.shiftRepo.ListCashMovements(shiftID)
	if err != nil {
		return nil, "", fmt.Errorf("arqueo: obtener movimientos: %w", err)
	}
	branch, err := uc.branchRepo.GetByID(shift.BranchID)
	if err != nil || branch == nil {
		return nil, "", fmt.Errorf("arqueo: obtener sucursal: %w", err)
	}

	pdfBytes, err = generator.GenerateShiftReportPDF(ctx, shift, movements, branch)
	if err != nil {
		return nil, "", fmt.Errorf("arqueo: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("arqueo_%s.pdf", shift.ID)
	return pdfBytes, filename, nil
}
