package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Canonical column names, as they look after header canonicalization.
const (
	ColMonth            = "Month"
	ColInvoice          = "Invoice"
	ColMemberID         = "Member Id"
	ColTransactionDate  = "Transaction Date"
	ColAmount           = "Amount"
	ColPaymentReference = "Payment Reference"
	ColSettlementDate   = "Settlement Date"
)

const (
	DatasetSubmission = "submission"
	DatasetRemittance = "remittance"
)

var ErrUnknownPolicy = errors.New("unknown policy")

// DateOrder selects how ambiguous numeric dates such as 03-04-2025 are read.
type DateOrder string

const (
	DayFirst   DateOrder = "day_first"
	MonthFirst DateOrder = "month_first"
)

func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day_first", "dayfirst", "dmy":
		return DayFirst, nil
	case "month_first", "monthfirst", "mdy":
		return MonthFirst, nil
	}
	return "", fmt.Errorf("invalid date order %q: expected day_first or month_first", s)
}

// DateReduction selects the settlement date kept when several remittance
// rows share an invoice.
type DateReduction int

const (
	// DateFirst keeps the date and reference of the first row of the group.
	DateFirst DateReduction = iota
	// DateLatest keeps the most recent date of the group.
	DateLatest
)

// DateColumn is a date-typed column and its parsing convention.
type DateColumn struct {
	Column   string
	DayFirst bool
}

// Schema describes what the normalizer expects from one dataset.
type Schema struct {
	Dataset  string
	Required []string
	Amounts  []string
	Dates    []DateColumn
}

// SubmissionBinding names the canonical columns feeding a SubmissionRecord.
type SubmissionBinding struct {
	Month           string
	Invoice         string
	MemberID        string
	TransactionDate string
	Amount          string
}

// RemittanceBinding names the canonical columns feeding a RemittanceRecord.
type RemittanceBinding struct {
	Invoice          string
	PaymentReference string
	SettlementDate   string
	Amount           string
}

// PolicySpec is everything a policy decides: input schemas, aggregation
// key, remittance date reduction, status rule, display rank and projection.
type PolicySpec struct {
	Policy            domain.Policy
	Description       string
	Submission        Schema
	Remittance        Schema
	SubmissionColumns SubmissionBinding
	RemittanceColumns RemittanceBinding
	KeyByMonth        bool
	DateReduction     DateReduction
	Rule              StatusRule
	Rank              func(domain.Status) int
	Columns           []string
	Project           func(domain.ReconciliationRow) []string
}

// HasStatus reports whether the policy classifies rows.
func (p PolicySpec) HasStatus() bool {
	return p.Rule != nil
}

var policyOrder = []domain.Policy{
	domain.PolicyPlain,
	domain.PolicyBalanced,
	domain.PolicyPendingAware,
}

// Policies lists the supported policies in a stable order.
func Policies() []domain.Policy {
	out := make([]domain.Policy, len(policyOrder))
	copy(out, policyOrder)
	return out
}

// ParsePolicy accepts a policy name case-insensitively, with either dashes
// or underscores.
func ParsePolicy(s string) (domain.Policy, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, p := range policyOrder {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnknownPolicy, s, policyOrder)
}

// Lookup returns everything a policy decides under the given date order.
func Lookup(policy domain.Policy, order DateOrder) (PolicySpec, error) {
	dayFirst := order != MonthFirst

	switch policy {
	case domain.PolicyPlain:
		return PolicySpec{
			Policy:            domain.PolicyPlain,
			Description:       "received amount per submitted invoice, no status",
			Submission:        fullSubmissionSchema(dayFirst),
			Remittance:        fullRemittanceSchema(dayFirst),
			SubmissionColumns: fullSubmissionBinding(),
			RemittanceColumns: fullRemittanceBinding(),
			KeyByMonth:        true,
			DateReduction:     DateFirst,
			Columns:           []string{"Month", "Invoice", "Payment Reference", "Settlement Date", "Amount"},
			Project: func(r domain.ReconciliationRow) []string {
				return []string{r.Month, r.InvoiceID, r.PaymentReference, FormatDate(r.SettlementDate), FormatAmount(r.TotalReceived)}
			},
		}, nil
	case domain.PolicyBalanced:
		return PolicySpec{
			Policy:      domain.PolicyBalanced,
			Description: "submitted vs received totals, ranked NOT_RECEIVED, UNDERPAID, OVERPAID, MATCHED",
			Submission: Schema{
				Dataset:  DatasetSubmission,
				Required: []string{ColInvoice, ColAmount, ColMonth},
				Amounts:  []string{ColAmount},
				Dates:    []DateColumn{{Column: ColTransactionDate, DayFirst: dayFirst}},
			},
			Remittance: Schema{
				Dataset:  DatasetRemittance,
				Required: []string{ColInvoice, ColTransactionDate, ColAmount},
				Amounts:  []string{ColAmount},
				Dates:    []DateColumn{{Column: ColTransactionDate, DayFirst: dayFirst}},
			},
			SubmissionColumns: fullSubmissionBinding(),
			RemittanceColumns: RemittanceBinding{
				Invoice:          ColInvoice,
				PaymentReference: ColPaymentReference,
				SettlementDate:   ColTransactionDate,
				Amount:           ColAmount,
			},
			KeyByMonth:    true,
			DateReduction: DateLatest,
			Rule:          BalancedRule,
			Rank:          BalancedRank,
			Columns: []string{
				"Invoice", "Month", "Total_Submitted", "Total_Received", "Difference", "Transaction_Date", "Status",
			},
			Project: func(r domain.ReconciliationRow) []string {
				return []string{
					r.InvoiceID, r.Month,
					FormatAmount(r.TotalSubmitted), FormatAmount(r.TotalReceived), FormatAmount(r.Difference),
					FormatDate(r.SettlementDate), string(r.Status),
				}
			},
		}, nil
	case domain.PolicyPendingAware:
		return PolicySpec{
			Policy:            domain.PolicyPendingAware,
			Description:       "submitted vs remitted amounts, PENDING until any payment arrives",
			Submission:        fullSubmissionSchema(dayFirst),
			Remittance:        fullRemittanceSchema(dayFirst),
			SubmissionColumns: fullSubmissionBinding(),
			RemittanceColumns: fullRemittanceBinding(),
			KeyByMonth:        true,
			DateReduction:     DateFirst,
			Rule:              PendingAwareRule,
			Columns: []string{
				"Month", "Invoice", "Payment Reference", "Settlement Date",
				"Submission_Amount", "Remittance_Amount", "Difference", "Status",
			},
			Project: func(r domain.ReconciliationRow) []string {
				return []string{
					r.Month, r.InvoiceID, r.PaymentReference, FormatDate(r.SettlementDate),
					FormatAmount(r.TotalSubmitted), FormatAmount(r.TotalReceived), FormatAmount(r.Difference),
					string(r.Status),
				}
			},
		}, nil
	}
	return PolicySpec{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

func fullSubmissionSchema(dayFirst bool) Schema {
	return Schema{
		Dataset:  DatasetSubmission,
		Required: []string{ColMonth, ColInvoice, ColMemberID, ColTransactionDate, ColAmount},
		Amounts:  []string{ColAmount},
		Dates:    []DateColumn{{Column: ColTransactionDate, DayFirst: dayFirst}},
	}
}

func fullRemittanceSchema(dayFirst bool) Schema {
	return Schema{
		Dataset:  DatasetRemittance,
		Required: []string{ColInvoice, ColPaymentReference, ColSettlementDate, ColAmount},
		Amounts:  []string{ColAmount},
		Dates:    []DateColumn{{Column: ColSettlementDate, DayFirst: dayFirst}},
	}
}

func fullSubmissionBinding() SubmissionBinding {
	return SubmissionBinding{
		Month:           ColMonth,
		Invoice:         ColInvoice,
		MemberID:        ColMemberID,
		TransactionDate: ColTransactionDate,
		Amount:          ColAmount,
	}
}

func fullRemittanceBinding() RemittanceBinding {
	return RemittanceBinding{
		Invoice:          ColInvoice,
		PaymentReference: ColPaymentReference,
		SettlementDate:   ColSettlementDate,
		Amount:           ColAmount,
	}
}
