package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/invoice-reconciler/pkg/models/api"
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

func balancedReport(t *testing.T) *domain.Report {
	t.Helper()
	engine, err := reconcile.NewEngine(domain.PolicyBalanced,
		reconcile.WithCurrency("GBP"),
		reconcile.WithClock(func() time.Time { return time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC) }),
		reconcile.WithRunIDs(func() string { return "run-42" }),
	)
	require.NoError(t, err)

	submission := domain.Table{
		Header: []string{"Month", "Invoice", "Amount"},
		Records: [][]string{
			{"Aug-2025", "INV-1", "1000"},
			{"Aug-2025", "INV-2", "250"},
			{"Aug-2025", "INV-3", "80"},
		},
	}
	remittance := domain.Table{
		Header: []string{"Invoice", "Transaction Date", "Amount"},
		Records: [][]string{
			{"INV-1", "2025-08-10", "1000"},
			{"INV-2", "2025-08-12", "200"},
		},
	}

	report, err := engine.Reconcile(context.Background(), submission, remittance)
	require.NoError(t, err)
	return report
}

func TestDefaultRegistry_Formats(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"csv", "json", "pdf", "table", "xlsx"}, r.ListFormats())

	sink, err := r.Create("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, sink.Format())
	assert.Equal(t, ".xlsx", sink.Extension())

	_, err = r.Create("docx")
	assert.ErrorContains(t, err, `format "docx" is not registered`)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	factory := func() Sink { return CSVSink{} }

	require.NoError(t, r.Register("csv", factory))
	assert.ErrorContains(t, r.Register("csv", factory), "already registered")
	assert.ErrorContains(t, r.Register(" ", factory), "cannot be empty")
	assert.ErrorContains(t, r.Register("tsv", nil), "cannot be nil")
	assert.Equal(t, []string{"csv"}, r.ListFormats())
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"out/result.csv":  FormatCSV,
		"result.JSON":     FormatJSON,
		"result.xlsx":     FormatXLSX,
		"/tmp/report.pdf": FormatPDF,
		"result.txt":      FormatTable,
		"result":          FormatTable,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatForPath(path), path)
	}
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVSink{}.Write(context.Background(), &buf, balancedReport(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Invoice,Month,Total_Submitted,Total_Received,Difference,Transaction_Date,Status", lines[0])
	assert.Equal(t, "INV-3,Aug-2025,80.00,0.00,80.00,,NOT_RECEIVED", lines[1])
	assert.Equal(t, "INV-2,Aug-2025,250.00,200.00,50.00,2025-08-12,UNDERPAID", lines[2])
	assert.Equal(t, "INV-1,Aug-2025,1000.00,1000.00,0.00,2025-08-10,MATCHED", lines[3])
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONSink{}.Write(context.Background(), &buf, balancedReport(t)))

	var got api.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "run-42", got.RunID)
	assert.Equal(t, "BALANCED", got.Policy)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "INV-3", got.Rows[0].Invoice)
	assert.Equal(t, "red", got.Rows[0].Highlight)
	assert.Equal(t, "Pending", got.Rows[0].PaymentReference)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "1330.00", got.Summary.TotalSubmitted)
	assert.Equal(t, "1200.00", got.Summary.TotalReceived)
	assert.Equal(t, "130.00", got.Summary.TotalDifference)
	assert.Equal(t, 1, got.Summary.MatchedCount)
	assert.Equal(t, 3, got.Summary.TotalCount)
	assert.Empty(t, got.Coercions)
}

func TestTableSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTableSink(DefaultTableConfig())
	require.NoError(t, sink.Write(context.Background(), &buf, balancedReport(t)))

	out := buf.String()
	assert.Contains(t, out, "Reconciliation run-42 (BALANCED)")
	assert.Contains(t, out, "Total Submitted:  GBP 1330.00")
	assert.Contains(t, out, "Matched:          1 of 3 (33.3%)")
	assert.Contains(t, out, "| Invoice | Month    |")
	assert.Contains(t, out, "| INV-3   | Aug-2025 |")
	assert.Contains(t, out, "UNDERPAID")
	assert.NotContains(t, out, "replaced by defaults")
}

func TestTableSink_TruncatesWideCells(t *testing.T) {
	report := &domain.Report{
		Columns: []string{"Invoice"},
		Cells:   [][]string{{"ABCDEFGHIJKLMNOP"}},
	}

	var buf bytes.Buffer
	sink := NewTableSink(TableConfig{MinColumnWidth: 4, MaxColumnWidth: 8})
	require.NoError(t, sink.Write(context.Background(), &buf, report))

	assert.Contains(t, buf.String(), "| ABCDEFG~ |")
}

func TestXLSXSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXSink{}.Write(context.Background(), &buf, balancedReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ResultSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Invoice", rows[0][0])
	assert.Equal(t, "INV-3", rows[1][0])
	assert.Equal(t, "MATCHED", rows[3][6])

	fills := map[string]string{"A2": "F8CBAD", "A3": "FFE699", "A4": "C6EFCE"}
	for cell, want := range fills {
		id, err := f.GetCellStyle(ResultSheet, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotEmpty(t, style.Fill.Color, cell)
		assert.True(t, strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), want), cell)
	}

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "run-42"}, summary[0])
	assert.Equal(t, "Matched", summary[7][0])
	assert.Equal(t, "1", summary[7][1])
}

func TestXLSXSink_PlainHasNoSummarySheet(t *testing.T) {
	report := &domain.Report{
		Policy:  domain.PolicyPlain,
		Columns: []string{"Month", "Invoice", "Payment Reference", "Settlement Date", "Amount"},
		Cells:   [][]string{{"Aug-2025", "INV-1", "Pending", "", "0.00"}},
	}

	var buf bytes.Buffer
	require.NoError(t, XLSXSink{}.Write(context.Background(), &buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{ResultSheet}, f.GetSheetList())
}

func TestPDFSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDFSink{}.Write(context.Background(), &buf, balancedReport(t)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "application/pdf", PDFSink{}.ContentType())
}
