package reconcile

import (
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Join left-joins aggregated submissions against aggregated remittances on
// invoice identity. Every submission yields exactly one row, in input
// order. Remittances are expected to be unique per invoice, as produced by
// AggregateRemittances; should one repeat, the first occurrence is used.
func Join(left []domain.AggregatedSubmission, right []domain.AggregatedRemittance) []domain.ReconciliationRow {
	byInvoice := make(map[string]domain.AggregatedRemittance, len(right))
	for _, r := range right {
		k := InvoiceKey(r.InvoiceID)
		if _, ok := byInvoice[k]; !ok {
			byInvoice[k] = r
		}
	}

	rows := make([]domain.ReconciliationRow, 0, len(left))
	for _, l := range left {
		row := domain.ReconciliationRow{
			Month:            l.Month,
			InvoiceID:        l.InvoiceID,
			PaymentReference: domain.PendingReference,
			TotalSubmitted:   l.TotalSubmitted,
		}
		if r, ok := byInvoice[InvoiceKey(l.InvoiceID)]; ok {
			row.Matched = true
			row.TotalReceived = r.TotalReceived
			row.SettlementDate = r.SettlementDate
			if r.PaymentReference != "" {
				row.PaymentReference = r.PaymentReference
			}
		}
		row.Difference = row.TotalSubmitted.Sub(row.TotalReceived)
		rows = append(rows, row)
	}
	return rows
}
