package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/storage"
	"bar-feature-lab/internal/tabular"
)

// RunInfo carries run metadata that is not derivable from the rows.
type RunInfo struct {
	RunID     string
	SeriesID  string
	Source    string
	OutPath   string
	Digest    string
	VolWindow int
	MomWindow int
}

// Generator produces run summaries from stored data.
type Generator struct {
	featureStore storage.FeatureStore
	runStore     storage.RunStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new summary generator.
func NewGenerator(featureStore storage.FeatureStore, runStore storage.RunStore) *Generator {
	return &Generator{
		featureStore: featureStore,
		runStore:     runStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate rebuilds the summary of a stored run.
// Input statistics are not persisted and stay zero.
func (g *Generator) Generate(ctx context.Context, runID string) (*Summary, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	rows, err := g.featureStore.GetBySeries(ctx, run.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", run.SeriesID, err)
	}

	info := RunInfo{
		RunID:     run.RunID,
		SeriesID:  run.SeriesID,
		Source:    run.Source,
		Digest:    run.Digest,
		VolWindow: run.VolWindow,
		MomWindow: run.MomWindow,
	}
	return BuildSummary(info, rows, tabular.Stats{}, g.now()), nil
}

// BuildSummary computes a summary from an in-memory feature table.
func BuildSummary(info RunInfo, rows []domain.FeatureRow, stats tabular.Stats, generatedAt time.Time) *Summary {
	s := &Summary{
		GeneratedAt: generatedAt,
		RunID:       info.RunID,
		SeriesID:    info.SeriesID,
		Source:      info.Source,
		OutPath:     info.OutPath,
		Digest:      info.Digest,
		VolWindow:   info.VolWindow,
		MomWindow:   info.MomWindow,
		Rows:        len(rows),
		Input:       stats,
		Columns:     ComputeColumnStats(rows),
	}
	if len(rows) > 0 {
		s.FirstTs = rows[0].Ts
		s.LastTs = rows[len(rows)-1].Ts
	}
	return s
}

// ComputeColumnStats returns statistics for every numeric feature column.
func ComputeColumnStats(rows []domain.FeatureRow) []ColumnStats {
	columns := []struct {
		name string
		get  func(domain.FeatureRow) float64
	}{
		{"mid", func(r domain.FeatureRow) float64 { return r.Mid }},
		{"ret_1", func(r domain.FeatureRow) float64 { return r.Ret1 }},
		{"vol", func(r domain.FeatureRow) float64 { return r.Vol }},
		{"mom", func(r domain.FeatureRow) float64 { return r.Mom }},
		{"volume", func(r domain.FeatureRow) float64 { return float64(r.Volume) }},
		{"inventory", func(r domain.FeatureRow) float64 { return r.Inventory }},
	}

	out := make([]ColumnStats, len(columns))
	for i, c := range columns {
		out[i] = columnStats(c.name, rows, c.get)
	}
	return out
}

func columnStats(name string, rows []domain.FeatureRow, get func(domain.FeatureRow) float64) ColumnStats {
	cs := ColumnStats{Name: name}

	finite := make([]float64, 0, len(rows))
	for _, r := range rows {
		v := get(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			cs.NonFinite++
			continue
		}
		if v == 0 {
			cs.Zeros++
		}
		finite = append(finite, v)
	}

	if len(finite) == 0 {
		nan := math.NaN()
		cs.Min, cs.Max, cs.Mean, cs.Stddev = nan, nan, nan, nan
		cs.P10, cs.Median, cs.P90 = nan, nan, nan
		return cs
	}

	describe(&cs, finite)
	return cs
}
