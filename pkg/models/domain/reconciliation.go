package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingReference is reported in place of a payment reference when no
// remittance covers the invoice.
const PendingReference = "Pending"

type Policy string

const (
	PolicyPlain        Policy = "PLAIN"
	PolicyBalanced     Policy = "BALANCED"
	PolicyPendingAware Policy = "PENDING_AWARE"
)

type Status string

const (
	StatusNone        Status = ""
	StatusNotReceived Status = "NOT_RECEIVED"
	StatusUnderpaid   Status = "UNDERPAID"
	StatusOverpaid    Status = "OVERPAID"
	StatusMatched     Status = "MATCHED"
	StatusPending     Status = "PENDING"
	StatusNotMatched  Status = "NOT_MATCHED"
)

// HighlightCategory is a presentation hint for report sinks. It is never
// serialized as a data column.
type HighlightCategory string

const (
	HighlightNone  HighlightCategory = ""
	HighlightRed   HighlightCategory = "red"
	HighlightAmber HighlightCategory = "amber"
	HighlightGreen HighlightCategory = "green"
)

type SubmissionRecord struct {
	Month           string
	InvoiceID       string
	MemberID        string
	TransactionDate *time.Time
	Amount          decimal.Decimal
}

type RemittanceRecord struct {
	InvoiceID        string
	PaymentReference string
	SettlementDate   *time.Time
	Amount           decimal.Decimal
}

type AggregatedSubmission struct {
	Month          string
	InvoiceID      string
	TotalSubmitted decimal.Decimal
}

type AggregatedRemittance struct {
	InvoiceID        string
	PaymentReference string
	// SettlementDate is the date reported for the invoice: the latest or the
	// first one in the group, depending on the policy.
	SettlementDate *time.Time
	TotalReceived  decimal.Decimal
	LatestDate     *time.Time
}

type ReconciliationRow struct {
	Month            string
	InvoiceID        string
	PaymentReference string
	SettlementDate   *time.Time
	TotalSubmitted   decimal.Decimal
	TotalReceived    decimal.Decimal
	Difference       decimal.Decimal
	Matched          bool
	Status           Status
	Highlight        HighlightCategory
}

type CoercionKind string

const (
	CoercionAmount       CoercionKind = "amount"
	CoercionDate         CoercionKind = "date"
	CoercionBlankInvoice CoercionKind = "blank_invoice"
)

// CoercionDefault records a cell that could not be parsed and was replaced
// by a neutral value. It is not an error.
type CoercionDefault struct {
	Dataset string
	Row     int // 1-based line in the source file, header included
	Column  string
	Value   string
	Kind    CoercionKind
}
