// Package main exports a stored feature series as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/logging"
	"bar-feature-lab/internal/reporting"
	"bar-feature-lab/internal/storage/backend"
	"bar-feature-lab/internal/tabular"
)

type exportFlags struct {
	configPath string
	store      string
	seriesID   string
	runID      string
	start      int64
	end        int64
	out        string
	summary    string
	stats      string
}

func parseFlags(args []string) (*exportFlags, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	f := &exportFlags{}

	fs.StringVar(&f.configPath, "config", "", "Path to YAML config")
	fs.StringVar(&f.store, "store", "", "Store backend: postgres|clickhouse|sqlite")
	fs.StringVar(&f.seriesID, "series", "", "Series ID to export")
	fs.StringVar(&f.runID, "run", "", "Run ID to export (resolves the series)")
	fs.Int64Var(&f.start, "start", math.MinInt64, "First ts to export (inclusive)")
	fs.Int64Var(&f.end, "end", math.MaxInt64, "Last ts to export (inclusive)")
	fs.StringVar(&f.out, "out", "", "Output CSV path (required)")
	fs.StringVar(&f.summary, "summary", "", "Write a markdown summary of the run (requires --run)")
	fs.StringVar(&f.stats, "stats", "", "Write per-column statistics CSV to this path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.out == "" {
		return nil, errors.New("--out is required")
	}
	if (f.seriesID == "") == (f.runID == "") {
		return nil, errors.New("exactly one of --series or --run is required")
	}
	if f.summary != "" && f.runID == "" {
		return nil, errors.New("--summary requires --run")
	}
	if f.start > f.end {
		return nil, fmt.Errorf("--start %d is after --end %d", f.start, f.end)
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

func run(ctx context.Context, f *exportFlags, stdout io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := logging.Component(logging.FromConfig(cfg.App.LogLevel, cfg.App.LogFormat), "export")

	stores, err := backend.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	if stores.Features == nil {
		return fmt.Errorf("backend %q has no feature store", stores.Backend)
	}

	seriesID := f.seriesID
	if f.runID != "" {
		if stores.Runs == nil {
			return fmt.Errorf("backend %q has no run store", stores.Backend)
		}
		record, err := stores.Runs.GetByID(ctx, f.runID)
		if err != nil {
			return fmt.Errorf("load run %s: %w", f.runID, err)
		}
		seriesID = record.SeriesID
	}

	var rows []domain.FeatureRow
	if f.start == math.MinInt64 && f.end == math.MaxInt64 {
		rows, err = stores.Features.GetBySeries(ctx, seriesID)
	} else {
		rows, err = stores.Features.GetByTimeRange(ctx, seriesID, f.start, f.end)
	}
	if err != nil {
		return fmt.Errorf("load series %s: %w", seriesID, err)
	}

	if err := tabular.WriteFeaturesFile(f.out, rows); err != nil {
		return fmt.Errorf("write features: %w", err)
	}
	logger.Info().Str("series_id", seriesID).Int("rows", len(rows)).Msg("series exported")

	if f.stats != "" {
		content := reporting.RenderColumnStatsCSV(reporting.ComputeColumnStats(rows))
		if err := os.WriteFile(f.stats, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}

	if f.summary != "" {
		summary, err := reporting.NewGenerator(stores.Features, stores.Runs).Generate(ctx, f.runID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.summary, []byte(reporting.RenderSummary(summary)), 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	fmt.Fprintf(stdout, "[OK] exported %d rows → %s\n", len(rows), f.out)
	return nil
}
