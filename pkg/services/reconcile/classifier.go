package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const currencyPlaces = 2

// StatusInput is everything a status rule may look at.
type StatusInput struct {
	Submitted         decimal.Decimal
	Received          decimal.Decimal
	Difference        decimal.Decimal
	HasSettlementDate bool
}

// StatusRule derives a status. Rules are pure.
type StatusRule func(StatusInput) domain.Status

func isZeroAtCurrency(d decimal.Decimal) bool {
	return d.Round(currencyPlaces).IsZero()
}

// BalancedRule: no settlement date means not received; otherwise the sign
// of the difference decides.
func BalancedRule(in StatusInput) domain.Status {
	switch {
	case !in.HasSettlementDate:
		return domain.StatusNotReceived
	case isZeroAtCurrency(in.Difference):
		return domain.StatusMatched
	case in.Difference.IsPositive():
		return domain.StatusUnderpaid
	default:
		return domain.StatusOverpaid
	}
}

// PendingAwareRule: nothing received is pending, an exact match is matched,
// anything else is not matched.
func PendingAwareRule(in StatusInput) domain.Status {
	switch {
	case isZeroAtCurrency(in.Received):
		return domain.StatusPending
	case isZeroAtCurrency(in.Difference):
		return domain.StatusMatched
	default:
		return domain.StatusNotMatched
	}
}

// HighlightFor maps a status to its presentation hint under a policy.
func HighlightFor(policy domain.Policy, status domain.Status) domain.HighlightCategory {
	switch policy {
	case domain.PolicyBalanced:
		switch status {
		case domain.StatusNotReceived:
			return domain.HighlightRed
		case domain.StatusUnderpaid, domain.StatusOverpaid:
			return domain.HighlightAmber
		case domain.StatusMatched:
			return domain.HighlightGreen
		}
	case domain.PolicyPendingAware:
		if status == domain.StatusMatched {
			return domain.HighlightGreen
		}
		if status != domain.StatusNone {
			return domain.HighlightAmber
		}
	}
	return domain.HighlightNone
}

// Classify returns a copy of rows with status and highlight set by the
// policy's rule. Policies without a rule get the rows back unclassified.
func Classify(spec PolicySpec, rows []domain.ReconciliationRow) []domain.ReconciliationRow {
	out := make([]domain.ReconciliationRow, len(rows))
	copy(out, rows)
	if !spec.HasStatus() {
		return out
	}

	for i := range out {
		out[i].Status = spec.Rule(StatusInput{
			Submitted:         out[i].TotalSubmitted,
			Received:          out[i].TotalReceived,
			Difference:        out[i].Difference,
			HasSettlementDate: out[i].SettlementDate != nil,
		})
		out[i].Highlight = HighlightFor(spec.Policy, out[i].Status)
	}
	return out
}
