package reconcile

import (
	"slices"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

var balancedRanks = map[domain.Status]int{
	domain.StatusNotReceived: 0,
	domain.StatusUnderpaid:   1,
	domain.StatusOverpaid:    2,
	domain.StatusMatched:     3,
}

// BalancedRank is the display rank of a BALANCED status. Unknown statuses
// sort last.
func BalancedRank(s domain.Status) int {
	if r, ok := balancedRanks[s]; ok {
		return r
	}
	return len(balancedRanks)
}

// SortByRank returns rows stably ordered by ascending rank. A nil rank keeps
// the input order.
func SortByRank(rows []domain.ReconciliationRow, rank func(domain.Status) int) []domain.ReconciliationRow {
	out := slices.Clone(rows)
	if rank == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.ReconciliationRow) int {
		return rank(a.Status) - rank(b.Status)
	})
	return out
}
