// Package main computes the OHLCV feature table from a bars CSV.
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

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/features"
	"bar-feature-lab/internal/logging"
	"bar-feature-lab/internal/observability"
	"bar-feature-lab/internal/pipeline"
	"bar-feature-lab/internal/storage/backend"
)

// cliFlags holds parsed command-line values.
type cliFlags struct {
	bars         string
	fills        string
	fillsAccount string
	volWin       int
	momWin       int
	out          string
	configPath   string
	store        string
	summary      string
	strictPrices bool
	logLevel     string
	metricsAddr  string

	set map[string]bool // flags given explicitly
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("features", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVar(&f.bars, "bars", "", "Path to the bars CSV (required)")
	fs.StringVar(&f.fills, "fills", "", "Path to the fills CSV (optional)")
	fs.StringVar(&f.fillsAccount, "fills-account", "", "Read fills for this account from the fill store")
	fs.IntVar(&f.volWin, "vol-win", features.DefaultVolWindow, "Rolling volatility window (bars)")
	fs.IntVar(&f.momWin, "mom-win", features.DefaultMomWindow, "Rolling momentum window (bars)")
	fs.StringVar(&f.out, "out", "", "Output CSV path")
	fs.StringVar(&f.configPath, "config", "", "Path to YAML config")
	fs.StringVar(&f.store, "store", "", "Store backend: none|memory|postgres|clickhouse|sqlite")
	fs.StringVar(&f.summary, "summary", "", "Write a markdown run summary to this path")
	fs.BoolVar(&f.strictPrices, "strict-prices", false, "Reject non-positive mid prices")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve /metrics on this address")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.bars == "" {
		return nil, errors.New("--bars is required")
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// applyFlags overrides cfg with explicitly given flags.
func applyFlags(cfg *config.Config, f *cliFlags) error {
	if f.set["vol-win"] {
		cfg.Features.VolWin = f.volWin
	}
	if f.set["mom-win"] {
		cfg.Features.MomWin = f.momWin
	}
	if f.set["strict-prices"] {
		cfg.Features.StrictPrices = f.strictPrices
	}
	if f.out != "" {
		cfg.Output.Path = f.out
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.logLevel != "" {
		cfg.App.LogLevel = f.logLevel
	}
	if f.metricsAddr != "" {
		cfg.App.MetricsAddr = f.metricsAddr
	}
	return cfg.Validate()
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

	// Create context with cancellation for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f *cliFlags, stdout io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f); err != nil {
		return err
	}

	logger := logging.Component(logging.FromConfig(cfg.App.LogLevel, cfg.App.LogFormat), "features")

	if cfg.App.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.App.MetricsAddr, logger)
	}

	stores, err := backend.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	runner := pipeline.New(pipeline.Options{
		FeatureStore: stores.Features,
		FillStore:    stores.Fills,
		RunStore:     stores.Runs,
		Backend:      stores.Backend,
		Logger:       logging.Component(logger, "pipeline"),
	})

	result, err := runner.Run(ctx, pipeline.Request{
		BarsPath:     f.bars,
		FillsPath:    f.fills,
		FillsAccount: f.fillsAccount,
		Options: features.Options{
			VolWindow:    cfg.Features.VolWin,
			MomWindow:    cfg.Features.MomWin,
			StrictPrices: cfg.Features.StrictPrices,
		},
		OutPath:     cfg.Output.Path,
		SummaryPath: f.summary,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "[OK] wrote %s rows → %s\n", formatCount(result.Rows), result.OutPath)
	return nil
}

func serveMetrics(ctx context.Context, addr string, logger zerolog.Logger) {
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := observability.Serve(ctx, addr); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

var countPrinter = message.NewPrinter(language.English)

// formatCount renders n with comma thousands separators.
func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}
