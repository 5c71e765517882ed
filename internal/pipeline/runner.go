// Package pipeline runs one feature computation end to end.
// Flow: read bars → read fills → compute → write CSV → persist → summarize
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/features"
	"bar-feature-lab/internal/idhash"
	"bar-feature-lab/internal/observability"
	"bar-feature-lab/internal/reporting"
	"bar-feature-lab/internal/storage"
	"bar-feature-lab/internal/tabular"
)

// ErrNoFillStore is returned when a fills account is requested but the
// backend provides no fill store.
var ErrNoFillStore = errors.New("fills account requested but no fill store configured")

// Runner executes feature pipeline runs.
type Runner struct {
	// Stores (any may be nil)
	featureStore storage.FeatureStore
	fillStore    storage.FillStore
	runStore     storage.RunStore
	backend      string

	metrics *observability.Metrics
	logger  zerolog.Logger
	clock   func() time.Time
}

// Options for creating Runner.
type Options struct {
	FeatureStore storage.FeatureStore
	FillStore    storage.FillStore
	RunStore     storage.RunStore
	Backend      string // label for metrics

	Metrics *observability.Metrics // defaults to observability.DefaultMetrics
	Logger  zerolog.Logger
	Clock   func() time.Time // defaults to time.Now().UTC()
}

// New creates a new Runner.
func New(opts Options) *Runner {
	r := &Runner{
		featureStore: opts.FeatureStore,
		fillStore:    opts.FillStore,
		runStore:     opts.RunStore,
		backend:      opts.Backend,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		clock:        opts.Clock,
	}
	if r.metrics == nil {
		r.metrics = observability.DefaultMetrics
	}
	if r.clock == nil {
		r.clock = func() time.Time { return time.Now().UTC() }
	}
	if r.backend == "" {
		r.backend = "none"
	}
	return r
}

// Request describes one run.
type Request struct {
	BarsPath     string
	FillsPath    string // optional; a missing file means no fills
	FillsAccount string // optional; read fills from the fill store instead
	Source       string // series label; defaults to the bars file name

	Options     features.Options
	OutPath     string
	SummaryPath string // optional markdown summary
}

// Result describes a completed run.
type Result struct {
	RunID       string
	SeriesID    string
	Source      string
	Rows        int
	OutPath     string
	SummaryPath string
	Digest      string
	Stored      bool // rows written to the feature store
	Stats       tabular.Stats
}

// Run executes the pipeline.
// Phases:
//  1. Read and normalize bars
//  2. Read fills (file or fill store)
//  3. Compute features
//  4. Write the feature CSV
//  5. Persist rows and run record
//  6. Write the summary
func (r *Runner) Run(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	rows := 0
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordPipelineRun(status, time.Since(start).Seconds(), rows)
	}()

	engine, err := features.NewEngine(req.Options)
	if err != nil {
		return nil, err
	}

	// Phase 1: Bars
	bars, stats, err := tabular.ReadBarsFile(req.BarsPath)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	r.logger.Debug().
		Int("bars", stats.BarRows).
		Int("duplicates", stats.DuplicateBars).
		Int("coerced_volume", stats.CoercedVolume).
		Int("coerced_prices", stats.CoercedPrices).
		Msg("bars loaded")

	// Phase 2: Fills
	fills, fillStats, err := r.loadFills(ctx, req)
	if err != nil {
		return nil, err
	}
	stats = stats.Merge(fillStats)

	r.metrics.RecordInput(stats.BarRows, stats.FillRows, stats.DuplicateBars, stats.DroppedFills)
	r.metrics.RecordCoerced("volume", stats.CoercedVolume)
	r.metrics.RecordCoerced("price", stats.CoercedPrices)
	r.metrics.RecordCoerced("qty", stats.CoercedQty)

	// Phase 3: Compute
	table, err := engine.Compute(bars, fills)
	if err != nil {
		return nil, fmt.Errorf("compute features: %w", err)
	}
	rows = len(table)

	// Phase 4: Output
	if err := tabular.WriteFeaturesFile(req.OutPath, table); err != nil {
		return nil, fmt.Errorf("write features: %w", err)
	}

	digest, err := idhash.TableDigest(table)
	if err != nil {
		return nil, fmt.Errorf("digest features: %w", err)
	}

	source := req.Source
	if source == "" {
		source = filepath.Base(req.BarsPath)
	}
	opts := engine.Options()

	result = &Result{
		RunID:    idhash.NewRunID(),
		SeriesID: idhash.ComputeSeriesID(source, opts.VolWindow, opts.MomWindow, digest),
		Source:   source,
		Rows:     len(table),
		OutPath:  req.OutPath,
		Digest:   digest,
		Stats:    stats,
	}

	// Phase 5: Persist
	if err := r.persist(ctx, result, opts, table); err != nil {
		return nil, err
	}

	// Phase 6: Summary
	if req.SummaryPath != "" {
		info := reporting.RunInfo{
			RunID:     result.RunID,
			SeriesID:  result.SeriesID,
			Source:    result.Source,
			OutPath:   result.OutPath,
			Digest:    result.Digest,
			VolWindow: opts.VolWindow,
			MomWindow: opts.MomWindow,
		}
		summary := reporting.BuildSummary(info, table, stats, r.clock())
		if err := writeFile(req.SummaryPath, reporting.RenderSummary(summary)); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		result.SummaryPath = req.SummaryPath
	}

	r.logger.Info().
		Str("run_id", result.RunID).
		Str("series_id", result.SeriesID).
		Int("rows", result.Rows).
		Str("digest", result.Digest).
		Msg("feature run complete")

	return result, nil
}

// loadFills returns nil fills when no fill source is available.
func (r *Runner) loadFills(ctx context.Context, req Request) ([]domain.Fill, tabular.Stats, error) {
	if req.FillsAccount != "" {
		if r.fillStore == nil {
			return nil, tabular.Stats{}, ErrNoFillStore
		}

		var fills []domain.Fill
		err := r.timed("get_fills", func() error {
			var err error
			fills, err = r.fillStore.GetByAccount(ctx, req.FillsAccount)
			return err
		})
		if err != nil {
			return nil, tabular.Stats{}, fmt.Errorf("load fills for %s: %w", req.FillsAccount, err)
		}
		return fills, tabular.Stats{FillRows: len(fills), FillsAvailable: true}, nil
	}

	if req.FillsPath == "" {
		return nil, tabular.Stats{}, nil
	}

	fills, stats, err := tabular.ReadFillsFile(req.FillsPath)
	if err != nil {
		return nil, tabular.Stats{}, fmt.Errorf("read fills: %w", err)
	}
	if fills == nil {
		r.logger.Info().Str("path", req.FillsPath).Msg("fills file not found, inventory set to 0")
		return nil, stats, nil
	}
	if stats.DroppedFills > 0 || stats.CoercedQty > 0 {
		r.logger.Debug().
			Int("dropped", stats.DroppedFills).
			Int("coerced_qty", stats.CoercedQty).
			Msg("fills coerced")
	}
	return fills, stats, nil
}

// persist stores rows and the run record when stores are configured.
// The series id covers the table digest, so a series that is already stored
// holds exactly these rows and is kept as is.
func (r *Runner) persist(ctx context.Context, result *Result, opts features.Options, table []domain.FeatureRow) error {
	if r.featureStore != nil {
		err := r.timed("insert_features", func() error {
			return r.featureStore.InsertBulk(ctx, result.SeriesID, table)
		})
		r.metrics.RecordStoreOp(r.backend, err)

		switch {
		case err == nil:
			result.Stored = true
		case errors.Is(err, storage.ErrDuplicateKey):
			r.logger.Info().Str("series_id", result.SeriesID).Msg("identical series already stored")
		default:
			return fmt.Errorf("store features: %w", err)
		}
	}

	if r.runStore != nil {
		record := &domain.RunRecord{
			RunID:        result.RunID,
			SeriesID:     result.SeriesID,
			Source:       result.Source,
			VolWindow:    opts.VolWindow,
			MomWindow:    opts.MomWindow,
			StrictPrices: opts.StrictPrices,
			Rows:         result.Rows,
			Digest:       result.Digest,
			CreatedAt:    r.clock().UnixMilli(),
		}
		err := r.timed("insert_run", func() error {
			return r.runStore.Insert(ctx, record)
		})
		if err != nil {
			return fmt.Errorf("store run: %w", err)
		}
	}

	return nil
}

func (r *Runner) timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.metrics.RecordDBQuery(r.backend, operation, time.Since(start).Seconds(), err)
	return err
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
