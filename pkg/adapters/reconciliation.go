package adapters

import (
	"github.com/de-tools/invoice-reconciler/pkg/models/api"
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

func MapReportDomainToApi(report *domain.Report) api.Report {
	out := api.Report{
		RunID:       report.RunID,
		Policy:      string(report.Policy),
		Currency:    report.Currency,
		GeneratedAt: report.GeneratedAt,
		Columns:     append([]string{}, report.Columns...),
		Cells:       make([][]string, 0, len(report.Cells)),
		Rows:        make([]api.ReconciliationRow, 0, len(report.Rows)),
		Coercions:   make([]api.CoercionDefault, 0, len(report.Coercions)),
	}

	for _, cells := range report.Cells {
		out.Cells = append(out.Cells, append([]string{}, cells...))
	}
	for _, row := range report.Rows {
		out.Rows = append(out.Rows, MapRowDomainToApi(row))
	}
	for _, c := range report.Coercions {
		out.Coercions = append(out.Coercions, api.CoercionDefault{
			Dataset: c.Dataset,
			Row:     c.Row,
			Column:  c.Column,
			Value:   c.Value,
			Kind:    string(c.Kind),
		})
	}
	if report.Summary != nil {
		summary := MapSummaryDomainToApi(*report.Summary)
		out.Summary = &summary
	}
	return out
}

func MapRowDomainToApi(row domain.ReconciliationRow) api.ReconciliationRow {
	return api.ReconciliationRow{
		Month:            row.Month,
		Invoice:          row.InvoiceID,
		PaymentReference: row.PaymentReference,
		SettlementDate:   reconcile.FormatDate(row.SettlementDate),
		TotalSubmitted:   reconcile.FormatAmount(row.TotalSubmitted),
		TotalReceived:    reconcile.FormatAmount(row.TotalReceived),
		Difference:       reconcile.FormatAmount(row.Difference),
		Status:           string(row.Status),
		Highlight:        string(row.Highlight),
	}
}

func MapSummaryDomainToApi(s domain.Summary) api.Summary {
	return api.Summary{
		TotalSubmitted:  reconcile.FormatAmount(s.TotalSubmitted),
		TotalReceived:   reconcile.FormatAmount(s.TotalReceived),
		TotalDifference: reconcile.FormatAmount(s.TotalDifference),
		MatchedCount:    s.MatchedCount,
		TotalCount:      s.TotalCount,
		MatchRate:       s.MatchRate(),
	}
}

func MapPolicySpecToApi(spec reconcile.PolicySpec) api.Policy {
	return api.Policy{
		Name:              string(spec.Policy),
		Description:       spec.Description,
		SubmissionColumns: append([]string{}, spec.Submission.Required...),
		RemittanceColumns: append([]string{}, spec.Remittance.Required...),
		OutputColumns:     append([]string{}, spec.Columns...),
		ComputesStatus:    spec.HasStatus(),
	}
}
