package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/spotsim/internal/dataset"
	"github.com/rustyeddy/spotsim/internal/rollout"
	"github.com/rustyeddy/spotsim/journal"
	"github.com/rustyeddy/spotsim/pkg/id"
	"github.com/rustyeddy/spotsim/policy"
	"github.com/rustyeddy/spotsim/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a policy against cached klines",
	Long: `Load the configured date range from the kline cache, build the trading
environment and play the selected policy for a number of episodes. Each episode
is rendered when it ends (or on every step with --render) and the recorded
history is exported once all episodes are done.

Examples:
  spotsim run
  spotsim run --policy buy-and-hold --episodes 1 --start 20240101 --end 20240107
  spotsim run -c spotsim.yaml --history sqlite`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runFlags struct {
	ticker   string
	start    string
	end      string
	dataDir  string
	policy   string
	episodes int
	seed     int64
	render   bool
	maxSteps int
	history  string
	output   string
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runFlags.ticker, "ticker", "", "ticker symbol (default from config)")
	f.StringVar(&runFlags.start, "start", "", "first day, YYYYMMDD")
	f.StringVar(&runFlags.end, "end", "", "last day, YYYYMMDD")
	f.StringVar(&runFlags.dataDir, "dir", "", "kline cache directory")
	f.StringVar(&runFlags.policy, "policy", "", fmt.Sprintf("policy to play %v", policy.Names()))
	f.IntVarP(&runFlags.episodes, "episodes", "n", 0, "number of episodes")
	f.Int64Var(&runFlags.seed, "seed", 0, "seed of the first episode")
	f.BoolVar(&runFlags.render, "render", false, "render every step instead of once per episode")
	f.IntVar(&runFlags.maxSteps, "max-steps", 0, "abandon episodes after this many steps (0 = no limit)")
	f.StringVar(&runFlags.history, "history", "", "history export: csv, sqlite or parquet")
	f.StringVarP(&runFlags.output, "output", "o", "", "history output path")
}

// applyRunFlags folds explicitly set flags into cfg.
func applyRunFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("ticker") {
		cfg.Data.Ticker = runFlags.ticker
	}
	if f.Changed("start") {
		cfg.Data.Start = runFlags.start
	}
	if f.Changed("end") {
		cfg.Data.End = runFlags.end
	}
	if f.Changed("dir") {
		cfg.Data.Dir = runFlags.dataDir
	}
	if f.Changed("policy") {
		cfg.Simulation.Policy = runFlags.policy
	}
	if f.Changed("episodes") {
		cfg.Simulation.Episodes = runFlags.episodes
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed = runFlags.seed
	}
	if f.Changed("render") {
		cfg.Simulation.Render = runFlags.render
	}
	if f.Changed("max-steps") {
		cfg.Simulation.MaxSteps = runFlags.maxSteps
	}
	if f.Changed("history") {
		cfg.History.Type = runFlags.history
	}
	if f.Changed("output") {
		if cfg.History.Type == "sqlite" {
			cfg.History.DBPath = runFlags.output
		} else {
			cfg.History.Path = runFlags.output
		}
	}
	return cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(cmd); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	log := slog.Default()

	loader := &dataset.Loader{Dir: cfg.Data.Dir, Logger: log}
	bars, err := loader.LoadRangeStrings(cfg.Data.Ticker, cfg.Data.Start, cfg.Data.End)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	initial := decimal.NewFromFloat(cfg.Simulation.InitialBalance)
	env, err := sim.New(bars,
		sim.WithInitialBalance(initial),
		sim.WithOutput(cmd.OutOrStdout()),
		sim.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create environment from %d bars: %w", len(bars), err)
	}

	pol, err := policy.ByName(cfg.Simulation.Policy, cfg.Simulation.Seed)
	if err != nil {
		return err
	}

	runID := id.New()
	path := cfg.History.Path
	if cfg.History.Type == "sqlite" {
		path = cfg.History.DBPath
	}
	j, err := journal.Open(cfg.History.Type, path, runID)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	log.Info("run started",
		"run_id", runID,
		"ticker", cfg.Data.Ticker,
		"start", cfg.Data.Start,
		"end", cfg.Data.End,
		"bars", len(bars),
		"policy", cfg.Simulation.Policy,
		"episodes", cfg.Simulation.Episodes,
	)

	runner := &rollout.Runner{
		Env:     env,
		Policy:  pol,
		Journal: j,
		Options: rollout.Options{
			Episodes: cfg.Simulation.Episodes,
			Seed:     cfg.Simulation.Seed,
			Render:   cfg.Simulation.Render,
			MaxSteps: cfg.Simulation.MaxSteps,
		},
		Logger: log,
	}
	results, err := runner.Run(cmd.Context())
	if err != nil {
		j.Close()
		return fmt.Errorf("run %s: %w", runID, err)
	}

	if s, ok := j.(*journal.SQLiteJournal); ok {
		if err := s.RecordRun(journal.Run{
			RunID:          runID,
			Created:        time.Now().UTC(),
			Ticker:         cfg.Data.Ticker,
			Start:          cfg.Data.Start,
			End:            cfg.Data.End,
			Policy:         cfg.Simulation.Policy,
			Episodes:       len(results),
			Bars:           len(bars),
			InitialBalance: initial,
			FinalValue:     env.Portfolio().Value,
		}); err != nil {
			j.Close()
			return fmt.Errorf("record run: %w", err)
		}
	}
	if err := j.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}

	rollout.PrintSummary(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s history saved to %s (%s)\n", runID, path, cfg.History.Type)
	return nil
}
