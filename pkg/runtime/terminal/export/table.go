package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

const FormatTable = "table"

type TableConfig struct {
	MinColumnWidth int
	MaxColumnWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinColumnWidth: 6,
		MaxColumnWidth: 40,
	}
}

// TableSink prints a report as a boxed plain-text table.
type TableSink struct {
	config TableConfig
}

func NewTableSink(config TableConfig) *TableSink {
	return &TableSink{config: config}
}

func (s *TableSink) Format() string      { return FormatTable }
func (s *TableSink) Extension() string   { return ".txt" }
func (s *TableSink) ContentType() string { return "text/plain; charset=utf-8" }

const tableTemplate = `Reconciliation {{.Report.RunID}} ({{.Report.Policy}})
Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
{{with .Report.Summary}}
Total Submitted:  {{$.Report.Currency}} {{amount .TotalSubmitted}}
Total Received:   {{$.Report.Currency}} {{amount .TotalReceived}}
Total Difference: {{$.Report.Currency}} {{amount .TotalDifference}}
Matched:          {{.MatchedCount}} of {{.TotalCount}} ({{percent .MatchRate}})
{{end}}
{{separator}}
{{formatRow .Report.Columns}}
{{separator}}
{{range .Report.Cells}}{{formatRow .}}
{{end}}{{separator}}
{{with .Report.Coercions}}
{{len .}} cell(s) could not be parsed and were replaced by defaults.
{{end}}`

func (s *TableSink) Write(_ context.Context, w io.Writer, report *domain.Report) error {
	widths := s.columnWidths(report)

	funcMap := template.FuncMap{
		"formatRow": func(cells []string) string {
			var b strings.Builder
			b.WriteString("|")
			for i, width := range widths {
				cell := ""
				if i < len(cells) {
					cell = truncate(cells[i], width)
				}
				if i < len(report.Columns) && isAmountColumn(report.Columns[i]) {
					fmt.Fprintf(&b, " %*s |", width, cell)
				} else {
					fmt.Fprintf(&b, " %-*s |", width, cell)
				}
			}
			return b.String()
		},
		"separator": func() string {
			var b strings.Builder
			b.WriteString("+")
			for _, width := range widths {
				b.WriteString(strings.Repeat("-", width+2))
				b.WriteString("+")
			}
			return b.String()
		},
		"amount":  reconcile.FormatAmount,
		"percent": func(rate float64) string { return fmt.Sprintf("%.1f%%", rate*100) },
	}

	t, err := template.New("report").Funcs(funcMap).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(w, struct{ Report *domain.Report }{Report: report})
}

func (s *TableSink) columnWidths(report *domain.Report) []int {
	widths := make([]int, len(report.Columns))
	for i, col := range report.Columns {
		widths[i] = max(s.config.MinColumnWidth, utf8.RuneCountInString(col))
	}
	for _, cells := range report.Cells {
		for i := range widths {
			if i < len(cells) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cells[i]))
			}
		}
	}
	if s.config.MaxColumnWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], s.config.MaxColumnWidth)
		}
	}
	return widths
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	if width <= 1 {
		return string([]rune(s)[:width])
	}
	return string([]rune(s)[:width-1]) + "~"
}
