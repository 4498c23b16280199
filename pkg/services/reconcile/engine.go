package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

// Engine runs the reconciliation pipeline for one policy. It holds no
// mutable state and may be shared between goroutines.
type Engine struct {
	spec     PolicySpec
	currency string
	clock    func() time.Time
	newRunID func() string
}

type Option func(*engineOptions)

type engineOptions struct {
	order    DateOrder
	currency string
	clock    func() time.Time
	newRunID func() string
}

func WithDateOrder(order DateOrder) Option {
	return func(o *engineOptions) { o.order = order }
}

func WithCurrency(currency string) Option {
	return func(o *engineOptions) { o.currency = currency }
}

func WithClock(clock func() time.Time) Option {
	return func(o *engineOptions) { o.clock = clock }
}

func WithRunIDs(newRunID func() string) Option {
	return func(o *engineOptions) { o.newRunID = newRunID }
}

func NewEngine(policy domain.Policy, opts ...Option) (*Engine, error) {
	o := engineOptions{
		order:    DayFirst,
		clock:    func() time.Time { return time.Now().UTC() },
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	spec, err := Lookup(policy, o.order)
	if err != nil {
		return nil, err
	}
	return &Engine{spec: spec, currency: o.currency, clock: o.clock, newRunID: o.newRunID}, nil
}

func (e *Engine) Spec() PolicySpec {
	return e.spec
}

// Reconcile runs normalize, aggregate, join, classify, sort and assemble
// over the two tables. Schema violations return a *SchemaError before any
// aggregation; any other failure returns an *UnexpectedError. In both cases
// no report is returned.
func (e *Engine) Reconcile(ctx context.Context, submission, remittance domain.Table) (report *domain.Report, err error) {
	runID := e.newRunID()
	logger := zerolog.Ctx(ctx).With().
		Str("run_id", runID).
		Str("policy", string(e.spec.Policy)).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = &UnexpectedError{Err: fmt.Errorf("panic: %v", r)}
			logger.Error().Err(err).Msg("reconciliation aborted")
		}
	}()

	subRows, subCoercions, err := Normalize(submission, e.spec.Submission)
	if err != nil {
		return nil, err
	}
	remRows, remCoercions, err := Normalize(remittance, e.spec.Remittance)
	if err != nil {
		return nil, err
	}

	submissions, subDropped := e.bindSubmissions(subRows)
	remittances, remDropped := e.bindRemittances(remRows)

	coercions := make([]domain.CoercionDefault, 0, len(subCoercions)+len(remCoercions)+len(subDropped)+len(remDropped))
	coercions = append(coercions, subCoercions...)
	coercions = append(coercions, subDropped...)
	coercions = append(coercions, remCoercions...)
	coercions = append(coercions, remDropped...)
	logCoercions(&logger, coercions)

	rows := Join(
		AggregateSubmissions(submissions, e.spec.KeyByMonth),
		AggregateRemittances(remittances, e.spec.DateReduction),
	)
	rows = Classify(e.spec, rows)
	rows = SortByRank(rows, e.spec.Rank)

	report = &domain.Report{
		RunID:       runID,
		Policy:      e.spec.Policy,
		Currency:    e.currency,
		GeneratedAt: e.clock(),
		Columns:     append([]string(nil), e.spec.Columns...),
		Rows:        rows,
		Cells:       Project(e.spec, rows),
		Summary:     Summarize(e.spec, rows),
		Coercions:   coercions,
	}

	logger.Info().
		Int("submission_rows", submission.Len()).
		Int("remittance_rows", remittance.Len()).
		Int("report_rows", len(rows)).
		Int("coercions", len(coercions)).
		Msg("reconciliation completed")

	return report, nil
}

func (e *Engine) bindSubmissions(rows []NormalizedRow) ([]domain.SubmissionRecord, []domain.CoercionDefault) {
	b := e.spec.SubmissionColumns
	records := make([]domain.SubmissionRecord, 0, len(rows))
	var dropped []domain.CoercionDefault

	for _, row := range rows {
		invoice := row.Text[b.Invoice]
		if InvoiceKey(invoice) == "" {
			dropped = append(dropped, blankInvoice(DatasetSubmission, row.Line, b.Invoice))
			continue
		}
		records = append(records, domain.SubmissionRecord{
			Month:           row.Text[b.Month],
			InvoiceID:       invoice,
			MemberID:        row.Text[b.MemberID],
			TransactionDate: row.Dates[b.TransactionDate],
			Amount:          row.Amounts[b.Amount],
		})
	}
	return records, dropped
}

func (e *Engine) bindRemittances(rows []NormalizedRow) ([]domain.RemittanceRecord, []domain.CoercionDefault) {
	b := e.spec.RemittanceColumns
	records := make([]domain.RemittanceRecord, 0, len(rows))
	var dropped []domain.CoercionDefault

	for _, row := range rows {
		invoice := row.Text[b.Invoice]
		if InvoiceKey(invoice) == "" {
			dropped = append(dropped, blankInvoice(DatasetRemittance, row.Line, b.Invoice))
			continue
		}
		records = append(records, domain.RemittanceRecord{
			InvoiceID:        invoice,
			PaymentReference: row.Text[b.PaymentReference],
			SettlementDate:   row.Dates[b.SettlementDate],
			Amount:           row.Amounts[b.Amount],
		})
	}
	return records, dropped
}

func blankInvoice(dataset string, line int, column string) domain.CoercionDefault {
	return domain.CoercionDefault{Dataset: dataset, Row: line, Column: column, Kind: domain.CoercionBlankInvoice}
}

func logCoercions(logger *zerolog.Logger, coercions []domain.CoercionDefault) {
	perDataset := make(map[string]int)
	for _, c := range coercions {
		perDataset[c.Dataset]++
		logger.Debug().
			Str("dataset", c.Dataset).
			Int("row", c.Row).
			Str("column", c.Column).
			Str("value", c.Value).
			Str("kind", string(c.Kind)).
			Msg("cell replaced by default")
	}
	for dataset, n := range perDataset {
		logger.Warn().Str("dataset", dataset).Int("count", n).Msg("unparseable cells replaced by defaults")
	}
}
