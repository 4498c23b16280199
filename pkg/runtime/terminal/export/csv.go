package export

import (
	"context"
	"io"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/store/tabular"
)

const FormatCSV = "csv"

// CSVSink writes the projected columns and cells as comma-separated values.
type CSVSink struct{}

func (CSVSink) Format() string      { return FormatCSV }
func (CSVSink) Extension() string   { return ".csv" }
func (CSVSink) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVSink) Write(_ context.Context, w io.Writer, report *domain.Report) error {
	return tabular.WriteCSV(w, report.Columns, report.Cells)
}
