package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

type BatchCmd struct {
	manifest string
	env      EnvironmentFactory
}

func NewBatchCmd(env EnvironmentFactory) *cobra.Command {
	bc := &BatchCmd{env: env}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every reconciliation job listed in a YAML manifest",
		Args:  cobra.NoArgs,
		RunE:  bc.run,
	}

	cmd.Flags().StringVar(&bc.manifest, "manifest", "", "Path to the batch manifest")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

func (bc *BatchCmd) run(cmd *cobra.Command, _ []string) error {
	env, err := bc.env(cmd)
	if err != nil {
		return err
	}

	manifest, err := workflow.LoadManifest(bc.manifest)
	if err != nil {
		return err
	}

	ctrl := workflow.NewController(env.Runner, env.Config.Batch.Parallelism)
	results := ctrl.RunBatch(cmd.Context(), manifest.Jobs)

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "FAIL  %s: %v\n", r.Job.Name, r.Err)
			continue
		}
		fmt.Fprintf(out, "OK    %s: %d rows (%s)\n", r.Job.Name, len(r.Report.Rows), r.Report.Policy)
	}

	if failed := workflow.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
