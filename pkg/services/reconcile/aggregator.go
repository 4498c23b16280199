package reconcile

import (
	"strings"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Aggregate groups records by key and folds each group into one value.
// Groups come out in the order their key first appears in records.
func Aggregate[R any, K comparable, A any](
	records []R,
	key func(R) K,
	seed func(R) A,
	fold func(A, R) A,
) []A {
	positions := make(map[K]int)
	out := make([]A, 0)

	for _, r := range records {
		k := key(r)
		if pos, ok := positions[k]; ok {
			out[pos] = fold(out[pos], r)
			continue
		}
		positions[k] = len(out)
		out = append(out, seed(r))
	}
	return out
}

// InvoiceKey is the comparison form of an invoice id: whitespace removed
// and upper-cased.
func InvoiceKey(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}

type submissionKey struct {
	invoice string
	month   string
}

// AggregateSubmissions sums submitted amounts per invoice, and per month as
// well when byMonth is set.
func AggregateSubmissions(records []domain.SubmissionRecord, byMonth bool) []domain.AggregatedSubmission {
	return Aggregate(records,
		func(r domain.SubmissionRecord) submissionKey {
			k := submissionKey{invoice: InvoiceKey(r.InvoiceID)}
			if byMonth {
				k.month = r.Month
			}
			return k
		},
		func(r domain.SubmissionRecord) domain.AggregatedSubmission {
			agg := domain.AggregatedSubmission{InvoiceID: r.InvoiceID, TotalSubmitted: r.Amount}
			if byMonth {
				agg.Month = r.Month
			}
			return agg
		},
		func(agg domain.AggregatedSubmission, r domain.SubmissionRecord) domain.AggregatedSubmission {
			agg.TotalSubmitted = agg.TotalSubmitted.Add(r.Amount)
			return agg
		},
	)
}

// AggregateRemittances sums received amounts per invoice. LatestDate is the
// most recent settlement date of the group; SettlementDate follows the
// reduction.
func AggregateRemittances(records []domain.RemittanceRecord, reduction DateReduction) []domain.AggregatedRemittance {
	return Aggregate(records,
		func(r domain.RemittanceRecord) string {
			return InvoiceKey(r.InvoiceID)
		},
		func(r domain.RemittanceRecord) domain.AggregatedRemittance {
			return domain.AggregatedRemittance{
				InvoiceID:        r.InvoiceID,
				PaymentReference: r.PaymentReference,
				SettlementDate:   r.SettlementDate,
				TotalReceived:    r.Amount,
				LatestDate:       r.SettlementDate,
			}
		},
		func(agg domain.AggregatedRemittance, r domain.RemittanceRecord) domain.AggregatedRemittance {
			agg.TotalReceived = agg.TotalReceived.Add(r.Amount)
			if r.SettlementDate != nil && (agg.LatestDate == nil || r.SettlementDate.After(*agg.LatestDate)) {
				agg.LatestDate = r.SettlementDate
			}
			if reduction == DateLatest {
				agg.SettlementDate = agg.LatestDate
			}
			return agg
		},
	)
}
