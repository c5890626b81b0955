// Package pdf implementa los documentos impresos del punto de venta con Maroto v2:
// el ticket de venta (formato rollo de 80mm) y el reporte de arqueo de turno (A4).
//
// Layout del ticket:
//
//	┌──────────────────────────────┐
//	│  SUCURSAL        FOLIO/FECHA │
//	│  ──────────────────────────  │
//	│  Cant  Producto      Importe │
//	│  ──────────────────────────  │
//	│  Subtotal / IVA / TOTAL      │
//	│  Pago / Cambio               │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/shift"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ sales.TicketPDFGenerator = (*MarotoPDFGenerator)(nil)
var _ shift.ReportPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa los generadores de ticket y arqueo usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateTicketPDF genera el ticket de venta (rollo de 80mm) y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTicketPDF(
	_ context.Context,
	sale *entity.Sale,
	lines []*entity.SaleLine,
	branch *entity.Branch,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(80, 297).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Ticket "+sale.Folio, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(col.New(12).Add(
			text.New(branch.Name, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1,
			}),
			text.New("Folio: "+sale.Folio, props.Text{
				Size: 7, Align: align.Center, Top: 7, Color: colorGray,
			}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 6.5, Align: align.Center, Color: colorGray,
			}),
		)),
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
	)

	for _, l := range lines {
		m.AddRows(row.New(7).Add(
			col.New(7).Add(
				text.New(l.ProductName, props.Text{Size: 7, Top: 0.5}),
				text.New(fmt.Sprintf("%s x $%s", l.Quantity.String(), l.UnitPrice.StringFixed(2)), props.Text{
					Size: 6, Top: 4, Color: colorGray,
				}),
			),
			col.New(5).Add(text.New("$"+l.Total.StringFixed(2), props.Text{
				Size: 7, Align: align.Right, Top: 2,
			})),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(
		totalLine("Subtotal:", sale.Subtotal.StringFixed(2), false),
		totalLine("IVA:", sale.Tax.StringFixed(2), false),
		totalLine("TOTAL:", sale.Total.StringFixed(2), true),
		totalLine("Pago ("+sale.PaymentMethod+"):", sale.AmountPaid.StringFixed(2), false),
		totalLine("Cambio:", sale.Change.StringFixed(2), false),
	)

	if sale.Status == entity.SaleCancelada {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("** VENTA CANCELADA **", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 2,
			}),
		)))
	}

	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Gracias por su compra", props.Text{
			Size: 7, Align: align.Center, Top: 3, Color: colorGray,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateShiftReportPDF genera el reporte de arqueo de un turno cerrado (A4).
func (g *MarotoPDFGenerator) GenerateShiftReportPDF(
	_ context.Context,
	s *entity.Shift,
	movements []*entity.CashMovement,
	branch *entity.Branch,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Arqueo de caja", true).
		Build()

	m := maroto.New(cfg)

	closedAt := "—"
	if s.ClosedAt != nil {
		closedAt = s.ClosedAt.Format("02/01/2006 15:04")
	}
	m.AddRows(
		row.New(16).Add(
			col.New(7).Add(
				text.New(branch.Name, props.Text{
					Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
				}),
				text.New("Caja: "+s.TillID+"   |   Cajero: "+s.CashierID, props.Text{
					Size: 8, Top: 9, Color: colorGray,
				}),
			),
			col.New(5).Add(
				text.New("ARQUEO DE CAJA", props.Text{
					Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
				}),
				text.New("Apertura: "+s.OpenedAt.Format("02/01/2006 15:04"), props.Text{
					Size: 8, Align: align.Right, Top: 8, Color: colorGray,
				}),
				text.New("Cierre: "+closedAt, props.Text{
					Size: 8, Align: align.Right, Top: 12, Color: colorGray,
				}),
			),
		),
		line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}),
	)

	m.AddRows(
		reportLine("Fondo inicial", s.OpeningFloat),
		reportLine("Ventas en efectivo", s.CashSales),
		reportLine("Ventas con tarjeta", s.CardSales),
		reportLine("Ventas por transferencia", s.TransferSales),
		reportLine("Ingresos manuales", s.Income),
		reportLine("Retiros", s.Withdrawals.Neg()),
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		reportLine("Efectivo esperado", s.ExpectedCash),
		reportLine("Efectivo contado", s.CountedCash),
		reportLine("Desvío ("+s.VarianceClass+")", s.Variance),
	)

	if len(movements) > 0 {
		m.AddRows(
			row.New(8).Add(col.New(12).Add(
				text.New("MOVIMIENTOS DE CAJA", props.Text{
					Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
				}),
			)),
		)
		for _, mv := range movements {
			m.AddRows(movementLine(mv))
		}
	}

	if s.Observations != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+s.Observations, props.Text{
				Size: 8, Top: 2, Color: colorGray,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar arqueo: %w", err)
	}
	return doc.GetBytes(), nil
}

func totalLine(label, amount string, grand bool) core.Row {
	style := props.Text{Size: 7, Align: align.Right}
	if grand {
		style = props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}
	}
	labelStyle := style
	labelStyle.Align = align.Left
	return row.New(4).Add(
		col.New(7).Add(text.New(label, labelStyle)),
		col.New(5).Add(text.New("$"+amount, style)),
	)
}

func reportLine(label string, amount decimal.Decimal) core.Row {
	return row.New(6).Add(
		col.New(4),
		col.New(4).Add(text.New(label+":", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})),
		col.New(4).Add(text.New("$"+amount.StringFixed(2), props.Text{
			Size: 9, Align: align.Right, Right: 1,
		})),
	)
}

func movementLine(mv *entity.CashMovement) core.Row {
	detail := mv.Concept
	if mv.AuthorizedBy != "" {
		detail += "  (autorizó: " + mv.AuthorizedBy + ")"
	}
	return row.New(5).Add(
		col.New(2).Add(text.New(mv.CreatedAt.Format("15:04"), props.Text{Size: 8, Color: colorGray})),
		col.New(2).Add(text.New(mv.Type, props.Text{Size: 8})),
		col.New(5).Add(text.New(detail, props.Text{Size: 8})),
		col.New(3).Add(text.New("$"+mv.Amount.StringFixed(2), props.Text{Size: 8, Align: align.Right})),
	)
}
