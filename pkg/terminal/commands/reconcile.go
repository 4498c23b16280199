package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

type ReconcileCmd struct {
	submission string
	remittance string
	policy     string
	outputs    []string
	formats    []string
	env        EnvironmentFactory
	reporter   Reporter
}

func NewReconcileCmd(env EnvironmentFactory, reporter Reporter) *cobra.Command {
	rc := &ReconcileCmd{env: env, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a submission file against a remittance file",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.submission, "submission", "", "Submission file (.csv or .xlsx, local path or s3://bucket/key)")
	cmd.Flags().StringVar(&rc.remittance, "remittance", "", "Remittance file (.csv or .xlsx, local path or s3://bucket/key)")
	cmd.Flags().StringVar(&rc.policy, "policy", "", "Reconciliation policy (PLAIN, BALANCED, PENDING_AWARE); defaults to the configured policy")
	cmd.Flags().StringSliceVarP(&rc.outputs, "output", "o", nil, "File to write the result to; repeatable")
	cmd.Flags().StringSliceVarP(&rc.formats, "format", "f", nil, "Format of the matching --output (table, csv, json, xlsx, pdf); inferred from the extension when omitted")

	_ = cmd.MarkFlagRequired("submission")
	_ = cmd.MarkFlagRequired("remittance")

	return cmd
}

func (rc *ReconcileCmd) run(cmd *cobra.Command, _ []string) error {
	if len(rc.formats) > len(rc.outputs) {
		return fmt.Errorf("got %d --format values for %d --output values", len(rc.formats), len(rc.outputs))
	}

	env, err := rc.env(cmd)
	if err != nil {
		return err
	}

	job := workflow.Job{
		Name:       "cli",
		Policy:     rc.policy,
		Submission: rc.submission,
		Remittance: rc.remittance,
	}
	for i, path := range rc.outputs {
		out := workflow.Output{Path: path}
		if i < len(rc.formats) {
			out.Format = rc.formats[i]
		}
		job.Outputs = append(job.Outputs, out)
	}

	report, err := env.Runner.Run(cmd.Context(), job)
	if err != nil {
		return err
	}

	if len(job.Outputs) == 0 {
		sink, err := env.Sinks.Create(export.FormatTable)
		if err != nil {
			return err
		}
		return sink.Write(cmd.Context(), cmd.OutOrStdout(), report)
	}
	return rc.reporter.Handle(report, job.Outputs)
}
