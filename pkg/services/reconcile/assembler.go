package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Project renders rows to the policy's output columns.
func Project(spec PolicySpec, rows []domain.ReconciliationRow) [][]string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, spec.Project(r))
	}
	return cells
}

// Summarize computes totals and the matched count. It returns nil for
// policies that do not classify rows.
func Summarize(spec PolicySpec, rows []domain.ReconciliationRow) *domain.Summary {
	if !spec.HasStatus() {
		return nil
	}

	s := &domain.Summary{
		TotalSubmitted:  decimal.Zero,
		TotalReceived:   decimal.Zero,
		TotalDifference: decimal.Zero,
		TotalCount:      len(rows),
	}
	for _, r := range rows {
		s.TotalSubmitted = s.TotalSubmitted.Add(r.TotalSubmitted)
		s.TotalReceived = s.TotalReceived.Add(r.TotalReceived)
		s.TotalDifference = s.TotalDifference.Add(r.Difference)
		if r.Status == domain.StatusMatched {
			s.MatchedCount++
		}
	}
	return s
}
