package terminal

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/config"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
	"github.com/de-tools/invoice-reconciler/pkg/store/tabular"
	"github.com/de-tools/invoice-reconciler/pkg/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	sinks      export.Registry
	reporter   *Reporter
	errOutput  io.Writer
	configPath string
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Sinks     export.Registry
	Output    io.Writer
	ErrOutput io.Writer
	// Reader overrides where input tables are loaded from.
	Reader workflow.TableReader
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Sinks == nil {
		opts.Sinks = export.DefaultRegistry()
	}

	cli := &CLI{
		sinks:     opts.Sinks,
		reporter:  NewReporter(opts.Output),
		errOutput: opts.ErrOutput,
	}

	cli.rootCmd = cli.newRootCmd(opts)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides the process arguments, mostly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reconciler",
		Short:         "Invoice reconciliation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Output)
	cmd.SetErr(opts.ErrOutput)

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "",
		"Path to a config file (yaml, toml or json); RECONCILER_* variables override it")

	env := func(c *cobra.Command) (*commands.Environment, error) {
		return cli.environment(c, opts.Reader)
	}

	cmd.AddCommand(commands.NewReconcileCmd(env, cli.reporter))
	cmd.AddCommand(commands.NewBatchCmd(env))
	cmd.AddCommand(commands.NewPoliciesCmd())
	cmd.AddCommand(commands.NewTemplatesCmd())

	return cmd
}

func (cli *CLI) environment(cmd *cobra.Command, reader workflow.TableReader) (*commands.Environment, error) {
	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.errOutput, NoColor: true}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))

	if reader == nil {
		reader = tabular.NewOpener(tabular.WithRegion(cfg.S3.Region))
	}

	runner := workflow.NewRunner(reader, cli.sinks, nil, workflow.RunnerConfig{
		DefaultPolicy: cfg.DefaultPolicy(),
		DateOrder:     cfg.Order(),
		Currency:      cfg.Currency,
	})

	return &commands.Environment{
		Config: cfg,
		Runner: runner,
		Sinks:  cli.sinks,
	}, nil
}
