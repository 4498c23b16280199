package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
)

func NewPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the supported reconciliation policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, policy := range reconcile.Policies() {
				spec, err := reconcile.Lookup(policy, reconcile.DayFirst)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n  %s\n", spec.Policy, spec.Description)
				fmt.Fprintf(out, "  submission columns: %s\n", strings.Join(spec.Submission.Required, ", "))
				fmt.Fprintf(out, "  remittance columns: %s\n", strings.Join(spec.Remittance.Required, ", "))
				fmt.Fprintf(out, "  output columns:     %s\n", strings.Join(spec.Columns, ", "))
			}
			return nil
		},
	}
}
