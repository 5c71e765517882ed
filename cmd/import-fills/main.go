// Package main loads a fills CSV into the fill store under an account.
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
	"bar-feature-lab/internal/logging"
	"bar-feature-lab/internal/storage/backend"
	"bar-feature-lab/internal/tabular"
)

// ErrFillsNotFound is returned when the fills file does not exist.
var ErrFillsNotFound = errors.New("fills file not found")

type importFlags struct {
	configPath string
	store      string
	fills      string
	account    string
}

func parseFlags(args []string) (*importFlags, error) {
	fs := flag.NewFlagSet("import-fills", flag.ContinueOnError)
	f := &importFlags{}

	fs.StringVar(&f.configPath, "config", "", "Path to YAML config")
	fs.StringVar(&f.store, "store", "", "Store backend: postgres|sqlite")
	fs.StringVar(&f.fills, "fills", "", "Path to the fills CSV (required)")
	fs.StringVar(&f.account, "account", "", "Account to store the fills under (required)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.fills == "" || f.account == "" {
		return nil, errors.New("--fills and --account are required")
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

func run(ctx context.Context, f *importFlags, stdout io.Writer) error {
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

	logger := logging.Component(logging.FromConfig(cfg.App.LogLevel, cfg.App.LogFormat), "import-fills")

	fills, stats, err := tabular.ReadFillsFile(f.fills)
	if err != nil {
		return err
	}
	if fills == nil {
		return fmt.Errorf("%w: %s", ErrFillsNotFound, f.fills)
	}
	if stats.DroppedFills > 0 || stats.CoercedQty > 0 {
		logger.Warn().
			Int("dropped", stats.DroppedFills).
			Int("coerced_qty", stats.CoercedQty).
			Msg("fills coerced")
	}

	stores, err := backend.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	if stores.Fills == nil {
		return fmt.Errorf("backend %q has no fill store", stores.Backend)
	}

	if err := stores.Fills.InsertBulk(ctx, f.account, fills); err != nil {
		return fmt.Errorf("store fills: %w", err)
	}

	fmt.Fprintf(stdout, "[OK] imported %d fills for %s\n", len(fills), f.account)
	return nil
}
