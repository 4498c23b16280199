package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
	"github.com/de-tools/invoice-reconciler/pkg/store/tabular"
)

type TemplatesCmd struct {
	policy string
	dir    string
}

func NewTemplatesCmd() *cobra.Command {
	tc := &TemplatesCmd{}
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Write example submission and remittance files for a policy",
		Args:  cobra.NoArgs,
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.policy, "policy", "BALANCED", "Policy to write templates for")
	cmd.Flags().StringVar(&tc.dir, "dir", ".", "Directory to write the templates to")

	return cmd
}

func (tc *TemplatesCmd) run(cmd *cobra.Command, _ []string) error {
	policy, err := reconcile.ParsePolicy(tc.policy)
	if err != nil {
		return err
	}
	templates, err := reconcile.Templates(policy)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(tc.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, tmpl := range templates {
		path := filepath.Join(tc.dir, tmpl.FileName)
		if err := writeTemplate(path, tmpl); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s template to %s\n", tmpl.Dataset, path)
	}
	return nil
}

func writeTemplate(path string, tmpl reconcile.Template) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return tabular.WriteCSV(f, tmpl.Header, tmpl.Rows)
}
