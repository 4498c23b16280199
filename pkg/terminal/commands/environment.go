package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/config"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

// Environment is what commands need once configuration has been loaded.
type Environment struct {
	Config *config.Config
	Runner *workflow.Runner
	Sinks  export.Registry
}

// EnvironmentFactory builds the Environment for a command about to run.
type EnvironmentFactory func(cmd *cobra.Command) (*Environment, error)

// Reporter prints a short account of a finished run.
type Reporter interface {
	Handle(report *domain.Report, outputs []workflow.Output) error
}
