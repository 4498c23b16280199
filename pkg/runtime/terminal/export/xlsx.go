package export

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

const (
	FormatXLSX = "xlsx"

	ResultSheet  = "Reconciliation"
	SummarySheet = "Summary"

	numFmtTwoDecimals = 2
)

// XLSXSink writes the report as a workbook whose rows are filled with their
// highlight color.
type XLSXSink struct{}

func (XLSXSink) Format() string    { return FormatXLSX }
func (XLSXSink) Extension() string { return ".xlsx" }
func (XLSXSink) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXSink) Write(_ context.Context, w io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		return fmt.Errorf("failed to create result sheet: %w", err)
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	if err := writeResultSheet(f, styles, report); err != nil {
		return err
	}
	if report.Summary != nil {
		if err := writeSummarySheet(f, styles, report); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type workbookStyles struct {
	header int
	// cell styles keyed by highlight, then by whether the column holds amounts
	cells map[domain.HighlightCategory]map[bool]int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	styles := &workbookStyles{
		header: header,
		cells:  make(map[domain.HighlightCategory]map[bool]int),
	}

	categories := []domain.HighlightCategory{
		domain.HighlightNone, domain.HighlightRed, domain.HighlightAmber, domain.HighlightGreen,
	}
	for _, category := range categories {
		styles.cells[category] = make(map[bool]int)
		for _, amount := range []bool{false, true} {
			style := &excelize.Style{}
			if fill, ok := highlightFills[category]; ok {
				style.Fill = excelize.Fill{Type: "pattern", Color: []string{fill.hex}, Pattern: 1}
			}
			if amount {
				style.NumFmt = numFmtTwoDecimals
			}
			id, err := f.NewStyle(style)
			if err != nil {
				return nil, fmt.Errorf("failed to create cell style: %w", err)
			}
			styles.cells[category][amount] = id
		}
	}
	return styles, nil
}

func writeResultSheet(f *excelize.File, styles *workbookStyles, report *domain.Report) error {
	for col, name := range report.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ResultSheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(ResultSheet, cell, cell, styles.header); err != nil {
			return err
		}
	}

	for i, cells := range report.Cells {
		highlight := highlightAt(report, i)
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}

			amount := col < len(report.Columns) && isAmountColumn(report.Columns[col])
			var v any = value
			if amount {
				if d, err := decimal.NewFromString(value); err == nil {
					v = d.InexactFloat64()
				}
			}
			if err := f.SetCellValue(ResultSheet, cell, v); err != nil {
				return err
			}
			if err := f.SetCellStyle(ResultSheet, cell, cell, styles.cells[highlight][amount]); err != nil {
				return err
			}
		}
	}

	if len(report.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(report.Columns))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ResultSheet, "A", last, 18); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, styles *workbookStyles, report *domain.Report) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	s := report.Summary
	rows := [][2]any{
		{"Run ID", report.RunID},
		{"Policy", string(report.Policy)},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Currency", report.Currency},
		{"Total Submitted", s.TotalSubmitted.InexactFloat64()},
		{"Total Received", s.TotalReceived.InexactFloat64()},
		{"Total Difference", s.TotalDifference.InexactFloat64()},
		{"Matched", s.MatchedCount},
		{"Total", s.TotalCount},
		{"Match Rate", reconcile.FormatAmount(decimal.NewFromFloat(s.MatchRate() * 100)) + "%"},
		{"Coerced Cells", len(report.Coercions)},
	}

	for i, row := range rows {
		label := fmt.Sprintf("A%d", i+1)
		value := fmt.Sprintf("B%d", i+1)
		if err := f.SetCellValue(SummarySheet, label, row[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, label, label, styles.header); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, value, row[1]); err != nil {
			return err
		}
		if _, ok := row[1].(float64); ok {
			if err := f.SetCellStyle(SummarySheet, value, value, styles.cells[domain.HighlightNone][true]); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 22)
}
