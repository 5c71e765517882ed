// Package main replays a quoting strategy over a feature series and writes
// its PnL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bar-feature-lab/internal/backtest"
	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/features"
	"bar-feature-lab/internal/logging"
	"bar-feature-lab/internal/storage/backend"
	"bar-feature-lab/internal/strategy"
	"bar-feature-lab/internal/tabular"
)

type backtestFlags struct {
	configPath string
	store      string
	bars       string
	runID      string
	strategy   string
	out        string
	fillsOut   string
	logLevel   string
}

func parseFlags(args []string) (*backtestFlags, error) {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	f := &backtestFlags{}

	fs.StringVar(&f.configPath, "config", "", "Path to YAML config")
	fs.StringVar(&f.store, "store", "", "Store backend: postgres|clickhouse|sqlite")
	fs.StringVar(&f.bars, "bars", "", "Bars CSV; features are computed with the configured windows")
	fs.StringVar(&f.runID, "run", "", "Replay the series stored by this pipeline run")
	fs.StringVar(&f.strategy, "strategy", "", "Strategy: avellaneda_stoikov|baseline (overrides config)")
	fs.StringVar(&f.out, "out", "", "PnL CSV path (required)")
	fs.StringVar(&f.fillsOut, "fills-out", "", "Write simulated executions as a fills CSV")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.out == "" {
		return nil, errors.New("--out is required")
	}
	if (f.bars == "") == (f.runID == "") {
		return nil, errors.New("exactly one of --bars or --run is required")
	}
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *backtestFlags, stdout io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.strategy != "" {
		cfg.Backtest.Strategy = f.strategy
	}
	if f.logLevel != "" {
		cfg.App.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Component(logging.FromConfig(cfg.App.LogLevel, cfg.App.LogFormat), "backtest")

	strat, err := strategy.FromConfig(cfg.Backtest)
	if err != nil {
		return err
	}
	engine := backtest.NewEngine(backtest.Options{Logger: logger})

	var results *backtest.Results
	if f.bars != "" {
		rows, err := computeFeatures(f.bars, cfg.Features)
		if err != nil {
			return err
		}
		results, err = engine.Run(ctx, strat, rows)
		if err != nil {
			return err
		}
	} else {
		stores, err := backend.Open(ctx, cfg.Store, logger)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer stores.Close()
		if stores.Features == nil || stores.Runs == nil {
			return fmt.Errorf("backend %q cannot resolve runs", stores.Backend)
		}

		runner := backtest.NewRunner(backtest.RunnerOptions{
			FeatureStore: stores.Features,
			RunStore:     stores.Runs,
			Engine:       engine,
		})
		results, err = runner.RunForRun(ctx, f.runID, strat)
		if err != nil {
			return err
		}
	}

	if err := tabular.WriteFile(f.out, func(w io.Writer) error {
		return tabular.WritePnL(w, results.Points)
	}); err != nil {
		return fmt.Errorf("write pnl: %w", err)
	}

	if f.fillsOut != "" {
		fills := make([]domain.Fill, len(results.Fills))
		for i, qf := range results.Fills {
			fills[i] = qf.Fill()
		}
		if err := tabular.WriteFile(f.fillsOut, func(w io.Writer) error {
			return tabular.WriteFills(w, fills)
		}); err != nil {
			return fmt.Errorf("write fills: %w", err)
		}
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "[OK] %s: %d bars, %d fills, equity %.2f → %s\n",
		results.StrategyID, results.Bars, len(results.Fills), results.Final.Equity, f.out)
	return nil
}

func computeFeatures(barsPath string, cfg config.Features) ([]domain.FeatureRow, error) {
	engine, err := features.NewEngine(features.Options{
		VolWindow:    cfg.VolWin,
		MomWindow:    cfg.MomWin,
		StrictPrices: cfg.StrictPrices,
	})
	if err != nil {
		return nil, err
	}

	bars, _, err := tabular.ReadBarsFile(barsPath)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	rows, err := engine.Compute(bars, nil)
	if err != nil {
		return nil, fmt.Errorf("compute features: %w", err)
	}
	return rows, nil
}
