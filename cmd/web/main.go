package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/invoice-reconciler/pkg/observability/metrics"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/server"
	"github.com/de-tools/invoice-reconciler/pkg/services/config"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
	"github.com/de-tools/invoice-reconciler/pkg/store/tabular"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the invoice reconciliation web server",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (yaml, toml or json); RECONCILER_* variables override it")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger = logger.Level(cfg.Level())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	sinks := export.DefaultRegistry()
	runner := workflow.NewRunner(
		tabular.NewOpener(tabular.WithRegion(cfg.S3.Region)),
		sinks,
		m,
		workflow.RunnerConfig{
			DefaultPolicy: cfg.DefaultPolicy(),
			DateOrder:     cfg.Order(),
			Currency:      cfg.Currency,
		},
	)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	logger.Info().
		Str("policy", string(cfg.DefaultPolicy())).
		Str("date_order", string(cfg.Order())).
		Msgf("configuration loaded, serving on %s", addr)

	web := server.NewWebAPI(logger, server.Config{
		Addr:           addr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Dependencies: server.Dependencies{
			Reconciler: runner,
			Sinks:      sinks,
			Gatherer:   reg,
		},
	})

	return web.Start()
}
