package export

import (
	"context"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

const FormatPDF = "pdf"

// PDFSink renders a landscape A4 document with the summary and the
// highlighted result table.
type PDFSink struct{}

func (PDFSink) Format() string      { return FormatPDF }
func (PDFSink) Extension() string   { return ".pdf" }
func (PDFSink) ContentType() string { return "application/pdf" }

func (PDFSink) Write(_ context.Context, w io.Writer, report *domain.Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Invoice Reconciliation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", report.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Policy: %s", report.Policy))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	pdf.Ln(5)

	if s := report.Summary; s != nil {
		pdf.Ln(3)
		pdf.Cell(0, 6, fmt.Sprintf("Total Submitted (%s): %s", report.Currency, reconcile.FormatAmount(s.TotalSubmitted)))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Total Received (%s): %s", report.Currency, reconcile.FormatAmount(s.TotalReceived)))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Total Difference (%s): %s", report.Currency, reconcile.FormatAmount(s.TotalDifference)))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Matched: %d of %d (%.1f%%)", s.MatchedCount, s.TotalCount, s.MatchRate()*100))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	if len(report.Columns) > 0 {
		pageWidth, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		width := (pageWidth - left - right) / float64(len(report.Columns))

		pdf.SetFont("Arial", "B", 9)
		for _, col := range report.Columns {
			pdf.CellFormat(width, 6, col, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for i, cells := range report.Cells {
			fill, filled := highlightFills[highlightAt(report, i)]
			if filled {
				pdf.SetFillColor(fill.rgb.r, fill.rgb.g, fill.rgb.b)
			}
			for col := range report.Columns {
				value := ""
				if col < len(cells) {
					value = cells[col]
				}
				align := "L"
				if isAmountColumn(report.Columns[col]) {
					align = "R"
				}
				pdf.CellFormat(width, 6, value, "1", 0, align, filled, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if len(report.Coercions) > 0 {
		pdf.Ln(4)
		pdf.Cell(0, 6, fmt.Sprintf("%d cell(s) could not be parsed and were replaced by defaults.", len(report.Coercions)))
		pdf.Ln(5)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
