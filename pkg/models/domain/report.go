package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is the assembled outcome of one reconciliation run.
type Report struct {
	RunID       string
	Policy      Policy
	Currency    string
	GeneratedAt time.Time
	Columns     []string
	Rows        []ReconciliationRow

	// Cells holds Rows projected to Columns, one slice per row.
	Cells [][]string

	Summary   *Summary
	Coercions []CoercionDefault
}

// Summary holds the aggregate metrics for policies that compute a status.
type Summary struct {
	TotalSubmitted  decimal.Decimal
	TotalReceived   decimal.Decimal
	TotalDifference decimal.Decimal
	MatchedCount    int
	TotalCount      int
}

// MatchRate is MatchedCount / TotalCount, or zero for an empty report.
func (s Summary) MatchRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.MatchedCount) / float64(s.TotalCount)
}
