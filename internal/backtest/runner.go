package backtest

import (
	"context"
	"errors"
	"fmt"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
	"bar-feature-lab/internal/strategy"
)

// ErrSeriesEmpty is returned when a stored series has no rows to replay.
var ErrSeriesEmpty = errors.New("series has no feature rows")

// Runner executes backtests over stored feature series.
type Runner struct {
	featureStore storage.FeatureStore
	runStore     storage.RunStore
	engine       *Engine
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	FeatureStore storage.FeatureStore
	RunStore     storage.RunStore // optional; needed by RunForRun
	Engine       *Engine          // defaults to NewEngine(Options{})
}

// NewRunner creates a backtest runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		featureStore: opts.FeatureStore,
		runStore:     opts.RunStore,
		engine:       opts.Engine,
	}
	if r.engine == nil {
		r.engine = NewEngine(Options{})
	}
	return r
}

// RunSeries replays strat over the stored rows of seriesID.
func (r *Runner) RunSeries(ctx context.Context, seriesID string, strat strategy.Strategy) (*Results, error) {
	rows, err := r.featureStore.GetBySeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", seriesID, err)
	}
	return r.run(ctx, seriesID, rows, strat)
}

// RunForRun resolves the series written by a pipeline run and replays it.
func (r *Runner) RunForRun(ctx context.Context, runID string, strat strategy.Strategy) (*Results, error) {
	if r.runStore == nil {
		return nil, fmt.Errorf("resolve run %s: no run store configured", runID)
	}
	record, err := r.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return r.RunSeries(ctx, record.SeriesID, strat)
}

func (r *Runner) run(ctx context.Context, seriesID string, rows []domain.FeatureRow, strat strategy.Strategy) (*Results, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeriesEmpty, seriesID)
	}
	return r.engine.Run(ctx, strat, rows)
}
