package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

// Reporter outputs a short run summary to the console
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

type statusCount struct {
	Status domain.Status
	Count  int
}

func (c *Reporter) Handle(report *domain.Report, outputs []workflow.Output) error {
	tmpl := `Run {{.Report.RunID}} ({{.Report.Policy}}): {{len .Report.Rows}} invoice(s)
{{range .Statuses}}  {{printf "%-13s" .Status}} {{.Count}}
{{end}}{{with .Report.Summary}}  difference    {{$.Report.Currency}} {{amount .TotalDifference}}
{{end}}{{with .Report.Coercions}}  {{len .}} cell(s) replaced by defaults
{{end}}{{range .Outputs}}Written {{.Path}} ({{format .}})
{{end}}`

	funcMap := template.FuncMap{
		"amount": reconcile.FormatAmount,
		"format": func(out workflow.Output) string {
			if out.Format != "" {
				return out.Format
			}
			return export.FormatForPath(out.Path)
		},
	}

	t, err := template.New("summary").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		Report   *domain.Report
		Statuses []statusCount
		Outputs  []workflow.Output
	}{
		Report:   report,
		Statuses: countStatuses(report),
		Outputs:  outputs,
	})
}

// countStatuses tallies rows per status in order of first appearance.
func countStatuses(report *domain.Report) []statusCount {
	var counts []statusCount
	index := make(map[domain.Status]int)
	for _, row := range report.Rows {
		if row.Status == domain.StatusNone {
			continue
		}
		i, ok := index[row.Status]
		if !ok {
			i = len(counts)
			index[row.Status] = i
			counts = append(counts, statusCount{Status: row.Status})
		}
		counts[i].Count++
	}
	return counts
}
