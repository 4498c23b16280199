package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

const (
	metricPrefix = "reconciler_"

	resultSuccess = "success"
	resultError   = "error"

	statusNone = "none"
)

// Metrics bundles reconciliation metrics. A nil *Metrics records nothing.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	RowsTotal        *prometheus.CounterVec
	CoercionDefaults *prometheus.CounterVec
}

// New constructs the metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total reconciliation runs by policy and result",
			},
			[]string{"policy", "result"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "run_duration_seconds",
				Help:    "Reconciliation run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"policy"},
		),
		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_total",
				Help: "Total reconciled rows by policy and status",
			},
			[]string{"policy", "status"},
		),
		CoercionDefaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "coercion_defaults_total",
				Help: "Total cells replaced by defaults by dataset and kind",
			},
			[]string{"dataset", "kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.RunsTotal, m.RunDuration, m.RowsTotal, m.CoercionDefaults} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRun records one finished run. report may be nil when the run failed.
func (m *Metrics) ObserveRun(policy domain.Policy, elapsed time.Duration, report *domain.Report, err error) {
	if m == nil {
		return
	}

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.RunsTotal.WithLabelValues(string(policy), result).Inc()
	m.RunDuration.WithLabelValues(string(policy)).Observe(elapsed.Seconds())

	if report == nil {
		return
	}
	for _, row := range report.Rows {
		status := string(row.Status)
		if status == "" {
			status = statusNone
		}
		m.RowsTotal.WithLabelValues(string(policy), status).Inc()
	}
	for _, c := range report.Coercions {
		m.CoercionDefaults.WithLabelValues(c.Dataset, string(c.Kind)).Inc()
	}
}
