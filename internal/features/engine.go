package features

import (
	"errors"
	"fmt"

	"bar-feature-lab/internal/domain"
)

// Errors returned by the feature engine.
var (
	ErrInvalidWindow    = errors.New("window size must be a positive integer")
	ErrUnsortedBars     = errors.New("bars must be sorted by ts with no duplicates")
	ErrNonPositivePrice = errors.New("non-positive mid price")
	ErrLengthMismatch   = errors.New("series length mismatch")
)

// PriceError reports the bar that failed the positivity check.
type PriceError struct {
	Ts  int64
	Mid float64
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("%v at ts=%d (mid=%g)", ErrNonPositivePrice, e.Ts, e.Mid)
}

// Unwrap lets errors.Is match ErrNonPositivePrice.
func (e *PriceError) Unwrap() error { return ErrNonPositivePrice }

// Default window sizes, in bars.
const (
	DefaultVolWindow = 60
	DefaultMomWindow = 5
)

// Options configures a feature computation.
type Options struct {
	VolWindow int // rolling volatility window (bars)
	MomWindow int // rolling momentum window (bars)

	// StrictPrices rejects non-positive mid prices up front instead of
	// letting non-finite log-returns flow into the table.
	StrictPrices bool
}

// DefaultOptions returns the standard window configuration.
func DefaultOptions() Options {
	return Options{VolWindow: DefaultVolWindow, MomWindow: DefaultMomWindow}
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.VolWindow <= 0 {
		return fmt.Errorf("%w: vol window %d", ErrInvalidWindow, o.VolWindow)
	}
	if o.MomWindow <= 0 {
		return fmt.Errorf("%w: mom window %d", ErrInvalidWindow, o.MomWindow)
	}
	return nil
}

// Engine derives the feature table from a bar table and optional fills.
// It holds no state between calls.
type Engine struct {
	opts Options
}

// NewEngine creates a feature engine with validated options.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Compute derives one feature row per bar.
// Steps:
//  1. Validate bar ordering (and prices when StrictPrices is set)
//  2. Mid-price and log-return series
//  3. Rolling volatility and momentum
//  4. Inventory reconstruction from fills, aligned to bar timestamps
//  5. Assemble rows in bar order
//
// A nil fills slice means no fill input; the inventory column is then 0.
func (e *Engine) Compute(bars []domain.Bar, fills []domain.Fill) ([]domain.FeatureRow, error) {
	// 1. Validate
	if err := checkSorted(bars); err != nil {
		return nil, err
	}
	if e.opts.StrictPrices {
		if err := CheckPositivePrices(bars); err != nil {
			return nil, err
		}
	}

	// 2. Price series
	mid, logret := BuildPriceSeries(bars)

	// 3. Rolling stats
	vol := RollingVolatility(logret, e.opts.VolWindow)
	mom := RollingMomentum(logret, e.opts.MomWindow)

	// 4. Inventory
	var inventory []float64
	if fills != nil {
		series := ReconstructInventory(fills)
		inventory = AlignInventory(barTimestamps(bars), series)
	}

	// 5. Assemble
	return Assemble(bars, Columns{
		Mid:       mid,
		Ret1:      logret,
		Vol:       vol,
		Mom:       mom,
		Inventory: inventory,
	})
}

// checkSorted verifies strictly increasing bar timestamps.
func checkSorted(bars []domain.Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Ts <= bars[i-1].Ts {
			return fmt.Errorf("%w: ts %d follows %d at row %d", ErrUnsortedBars, bars[i].Ts, bars[i-1].Ts, i)
		}
	}
	return nil
}

func barTimestamps(bars []domain.Bar) []int64 {
	ts := make([]int64, len(bars))
	for i, b := range bars {
		ts[i] = b.Ts
	}
	return ts
}
