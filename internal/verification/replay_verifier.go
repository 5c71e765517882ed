package verification

import (
	"context"
	"errors"
	"fmt"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/features"
	"bar-feature-lab/internal/idhash"
	"bar-feature-lab/internal/storage"
)

// ErrRunNotFound is returned when run ID doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// ReplayVerifier recomputes a stored run and compares the result.
type ReplayVerifier struct {
	featureStore storage.FeatureStore
	runStore     storage.RunStore
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	FeatureStore storage.FeatureStore
	RunStore     storage.RunStore
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		featureStore: opts.FeatureStore,
		runStore:     opts.RunStore,
	}
}

// VerifyRun recomputes the run's features from bars and fills with the
// run's windows and compares them with the stored series.
// Steps:
//  1. Load the run record
//  2. Recompute and digest the table
//  3. Load the stored series
//  4. Compare rows and digest
func (v *ReplayVerifier) VerifyRun(ctx context.Context, runID string, bars []domain.Bar, fills []domain.Fill) (*VerificationResult, error) {
	// 1. Load run
	run, err := v.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	// 2. Replay
	engine, err := features.NewEngine(features.Options{
		VolWindow:    run.VolWindow,
		MomWindow:    run.MomWindow,
		StrictPrices: run.StrictPrices,
	})
	if err != nil {
		return nil, err
	}
	replayed, err := engine.Compute(bars, fills)
	if err != nil {
		return nil, fmt.Errorf("recompute features: %w", err)
	}
	digest, err := idhash.TableDigest(replayed)
	if err != nil {
		return nil, err
	}

	// 3. Load stored rows
	stored, err := v.featureStore.GetBySeries(ctx, run.SeriesID)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", run.SeriesID, err)
	}

	// 4. Compare
	divergences := CompareFeatureRows(stored, replayed)
	if run.Digest != "" && run.Digest != digest {
		divergences = append(divergences, FieldDivergence{
			Field:    "digest",
			Expected: run.Digest,
			Actual:   digest,
		})
	}

	return &VerificationResult{
		RunID:          run.RunID,
		SeriesID:       run.SeriesID,
		Match:          len(divergences) == 0,
		Divergences:    divergences,
		StoredRows:     len(stored),
		ReplayedRows:   len(replayed),
		StoredDigest:   run.Digest,
		ReplayedDigest: digest,
	}, nil
}
