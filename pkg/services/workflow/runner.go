package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/observability/metrics"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

// Job is one reconciliation: two input locations, a policy and the files to
// write the result to.
type Job struct {
	Name       string   `yaml:"name"`
	Policy     string   `yaml:"policy"`
	Submission string   `yaml:"submission"`
	Remittance string   `yaml:"remittance"`
	Outputs    []Output `yaml:"outputs"`
}

// Output is a destination file. An empty Format is inferred from the path.
type Output struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// TableReader loads a dataset from a local path or object storage location.
type TableReader interface {
	ReadTable(ctx context.Context, location string) (domain.Table, error)
}

type RunnerConfig struct {
	DefaultPolicy domain.Policy
	DateOrder     reconcile.DateOrder
	Currency      string
	Clock         func() time.Time
}

type Runner struct {
	reader  TableReader
	sinks   export.Registry
	metrics *metrics.Metrics
	config  RunnerConfig
}

func NewRunner(reader TableReader, sinks export.Registry, m *metrics.Metrics, config RunnerConfig) *Runner {
	if config.DefaultPolicy == "" {
		config.DefaultPolicy = domain.PolicyBalanced
	}
	if config.DateOrder == "" {
		config.DateOrder = reconcile.DayFirst
	}
	return &Runner{
		reader:  reader,
		sinks:   sinks,
		metrics: m,
		config:  config,
	}
}

// Policy resolves a policy name, falling back to the configured default.
func (r *Runner) Policy(name string) (domain.Policy, error) {
	if name == "" {
		return r.config.DefaultPolicy, nil
	}
	return reconcile.ParsePolicy(name)
}

// Reconcile runs the engine on two in-memory tables and records metrics.
func (r *Runner) Reconcile(ctx context.Context, policy domain.Policy, submission, remittance domain.Table) (*domain.Report, error) {
	opts := []reconcile.Option{
		reconcile.WithDateOrder(r.config.DateOrder),
		reconcile.WithCurrency(r.config.Currency),
	}
	if r.config.Clock != nil {
		opts = append(opts, reconcile.WithClock(r.config.Clock))
	}

	engine, err := reconcile.NewEngine(policy, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := engine.Reconcile(ctx, submission, remittance)
	r.metrics.ObserveRun(policy, time.Since(start), report, err)
	return report, err
}

// Run reads both datasets of a job, reconciles them and writes every output.
func (r *Runner) Run(ctx context.Context, job Job) (*domain.Report, error) {
	logger := zerolog.Ctx(ctx).With().Str("job", job.Name).Logger()

	policy, err := r.Policy(job.Policy)
	if err != nil {
		return nil, err
	}

	var submission, remittance domain.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		submission, err = r.reader.ReadTable(gctx, job.Submission)
		if err != nil {
			return fmt.Errorf("failed to read %s file: %w", reconcile.DatasetSubmission, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		remittance, err = r.reader.ReadTable(gctx, job.Remittance)
		if err != nil {
			return fmt.Errorf("failed to read %s file: %w", reconcile.DatasetRemittance, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := r.Reconcile(logger.WithContext(ctx), policy, submission, remittance)
	if err != nil {
		return nil, err
	}

	for _, out := range job.Outputs {
		if err := r.Export(ctx, report, out); err != nil {
			return report, err
		}
		logger.Info().Str("path", out.Path).Msg("report written")
	}
	return report, nil
}

// Export writes a report to a local file, creating parent directories.
func (r *Runner) Export(ctx context.Context, report *domain.Report, out Output) (err error) {
	format := out.Format
	if format == "" {
		format = export.FormatForPath(out.Path)
	}
	sink, err := r.sinks.Create(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := sink.Write(ctx, f, report); err != nil {
		return fmt.Errorf("failed to write %s report: %w", sink.Format(), err)
	}
	return nil
}
