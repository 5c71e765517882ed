// Package main recomputes a stored run from its inputs and reports
// whether the stored series still matches.
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

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/logging"
	"bar-feature-lab/internal/storage/backend"
	"bar-feature-lab/internal/tabular"
	"bar-feature-lab/internal/verification"
)

// ErrMismatch is returned when the stored run diverges from the replay.
var ErrMismatch = errors.New("stored run does not match replay")

// maxReported caps the divergences printed.
const maxReported = 10

type verifyFlags struct {
	configPath   string
	store        string
	runID        string
	bars         string
	fills        string
	fillsAccount string
}

func parseFlags(args []string) (*verifyFlags, error) {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	f := &verifyFlags{}

	fs.StringVar(&f.configPath, "config", "", "Path to YAML config")
	fs.StringVar(&f.store, "store", "", "Store backend: postgres|sqlite")
	fs.StringVar(&f.runID, "run", "", "Run ID to verify (required)")
	fs.StringVar(&f.bars, "bars", "", "Path to the bars CSV (required)")
	fs.StringVar(&f.fills, "fills", "", "Path to the fills CSV (optional)")
	fs.StringVar(&f.fillsAccount, "fills-account", "", "Read fills for this account from the fill store")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.runID == "" || f.bars == "" {
		return nil, errors.New("--run and --bars are required")
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

func run(ctx context.Context, f *verifyFlags, stdout io.Writer) error {
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

	logger := logging.Component(logging.FromConfig(cfg.App.LogLevel, cfg.App.LogFormat), "verify")

	stores, err := backend.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	if stores.Features == nil || stores.Runs == nil {
		return fmt.Errorf("backend %q has no run store", stores.Backend)
	}

	bars, _, err := tabular.ReadBarsFile(f.bars)
	if err != nil {
		return fmt.Errorf("read bars: %w", err)
	}

	var fills []domain.Fill
	switch {
	case f.fillsAccount != "":
		if stores.Fills == nil {
			return fmt.Errorf("backend %q has no fill store", stores.Backend)
		}
		if fills, err = stores.Fills.GetByAccount(ctx, f.fillsAccount); err != nil {
			return fmt.Errorf("load fills: %w", err)
		}
	case f.fills != "":
		if fills, _, err = tabular.ReadFillsFile(f.fills); err != nil {
			return fmt.Errorf("read fills: %w", err)
		}
	}

	verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		FeatureStore: stores.Features,
		RunStore:     stores.Runs,
	})
	result, err := verifier.VerifyRun(ctx, f.runID, bars, fills)
	if err != nil {
		return err
	}

	if result.Match {
		fmt.Fprintf(stdout, "[OK] run %s matches (%d rows, digest %s)\n", result.RunID, result.ReplayedRows, result.ReplayedDigest)
		return nil
	}

	fmt.Fprintf(stdout, "[MISMATCH] run %s: %d divergences\n", result.RunID, len(result.Divergences))
	for i, d := range result.Divergences {
		if i == maxReported {
			fmt.Fprintf(stdout, "  ... %d more\n", len(result.Divergences)-maxReported)
			break
		}
		fmt.Fprintf(stdout, "  ts=%d %s: stored=%v replayed=%v\n", d.Ts, d.Field, d.Expected, d.Actual)
	}
	return ErrMismatch
}
