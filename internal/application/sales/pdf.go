package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// TicketPDFGenerator genera el ticket de venta en PDF.
type TicketPDFGenerator interface {
	GenerateTicketPDF(ctx context.Context, sale *entity.Sale, lines []*entity.SaleLine, branch *entity.Branch) ([]byte, error)
}

// DownloadTicketPDF recupera la venta con sus líneas y genera el ticket.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe.
func (uc *CheckoutUseCase) DownloadTicketPDF(ctx context.Context, saleID string, generator TicketPDFGenerator) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	lines, err := uc.saleRepo.GetLines(saleID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener líneas: %w", err)
	}
	branch, err := uc.branchRepo.GetByID(sale.BranchID)
	if err != nil || branch == nil {
		return nil, "", fmt.Errorf("ticket: obtener sucursal: %w", err)
	}

	pdfBytes, err = generator.GenerateTicketPDF(ctx, sale, lines, branch)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("ticket_%s.pdf", sale.Folio)
	return pdfBytes, filename, nil
}
