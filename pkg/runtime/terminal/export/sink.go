package export

import (
	"context"
	"io"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Sink renders a report into one output format.
type Sink interface {
	Format() string
	Extension() string
	ContentType() string
	Write(ctx context.Context, w io.Writer, report *domain.Report) error
}

// SinkFactory creates a fresh Sink.
type SinkFactory func() Sink

// ResultBaseName is the default file name of an exported report.
const ResultBaseName = "Reconciliation_Result"

type rgb struct{ r, g, b int }

var highlightFills = map[domain.HighlightCategory]struct {
	hex string
	rgb rgb
}{
	domain.HighlightRed:   {hex: "F8CBAD", rgb: rgb{248, 203, 173}},
	domain.HighlightAmber: {hex: "FFE699", rgb: rgb{255, 230, 153}},
	domain.HighlightGreen: {hex: "C6EFCE", rgb: rgb{198, 239, 206}},
}

var amountColumns = map[string]bool{
	"Amount":            true,
	"Total_Submitted":   true,
	"Total_Received":    true,
	"Difference":        true,
	"Submission_Amount": true,
	"Remittance_Amount": true,
}

func isAmountColumn(name string) bool {
	return amountColumns[name]
}

// highlightAt returns the highlight of the i-th row, tolerating reports
// whose Cells were built without Rows.
func highlightAt(report *domain.Report, i int) domain.HighlightCategory {
	if i < len(report.Rows) {
		return report.Rows[i].Highlight
	}
	return domain.HighlightNone
}
