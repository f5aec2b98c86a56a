package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/spotsim/config"
	"github.com/rustyeddy/spotsim/internal/logx"
	"github.com/rustyeddy/spotsim/internal/trace"
)

var rootCmd = &cobra.Command{
	Use:   "spotsim",
	Short: "A spot trading environment for reinforcement learning experiments",
	Long: `Spotsim replays cached exchange klines as a reset/step trading environment.

It provides tools for:
  - Downloading minutely Binance klines into a daily CSV cache
  - Playing policies against the environment for a number of episodes
  - Exporting step history to CSV, SQLite or Parquet
  - Inspecting stored runs

Configuration comes from an optional YAML/JSON file, then SPOTSIM_* environment
variables (a .env file is read when present), then command line flags.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string
	tracing   bool

	// cfg is the effective configuration, loaded before any subcommand runs.
	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&tracing, "trace", false, "print OpenTelemetry spans to stdout")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("trace") {
		cfg.Log.Tracing = tracing
	}

	logx.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := trace.Init(cfg.Log.Tracing, nil, version); err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return trace.Shutdown(ctx)
}
