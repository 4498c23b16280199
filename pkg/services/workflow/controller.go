package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
)

type JobRunner interface {
	Run(ctx context.Context, job Job) (*domain.Report, error)
}

// Result is the outcome of one job of a batch.
type Result struct {
	Job    Job
	Report *domain.Report
	Err    error
}

type Controller interface {
	RunBatch(ctx context.Context, jobs []Job) []Result
}

type DefaultController struct {
	runner      JobRunner
	parallelism int
}

func NewController(runner JobRunner, parallelism int) *DefaultController {
	if parallelism < 1 {
		parallelism = 1
	}
	return &DefaultController{
		runner:      runner,
		parallelism: parallelism,
	}
}

// RunBatch runs jobs with bounded parallelism. A failing job does not stop
// the others; results come back in job order.
func (ctrl *DefaultController) RunBatch(ctx context.Context, jobs []Job) []Result {
	logger := zerolog.Ctx(ctx)
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(ctrl.parallelism)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = Result{Job: job}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			report, err := ctrl.runner.Run(ctx, job)
			if err != nil {
				logger.Error().Err(err).Str("job", job.Name).Msg("job failed")
				results[i].Err = fmt.Errorf("job %s: %w", job.Name, err)
				return nil
			}
			results[i].Report = report
			logger.Info().Str("job", job.Name).Int("rows", len(report.Rows)).Msg("job completed")
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts the results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
