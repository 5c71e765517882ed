package features

import (
	"math"

	"bar-feature-lab/internal/domain"
)

// BuildPriceSeries derives mid-price and one-bar log-return series from bars.
// Bars must be pre-sorted by Ts.
//
// Formulas:
//   - mid[i] = (high[i] + low[i]) / 2
//   - logret[0] = 0 (no prior bar)
//   - logret[i] = ln(mid[i]) - ln(mid[i-1])
//
// Non-positive mids are not guarded: the logarithm yields a non-finite value
// that propagates into the return series. Use CheckPositivePrices to fail fast.
func BuildPriceSeries(bars []domain.Bar) (mid, logret []float64) {
	mid = make([]float64, len(bars))
	logret = make([]float64, len(bars))

	var prevLog float64
	for i, b := range bars {
		mid[i] = (b.High + b.Low) / 2.0
		curLog := math.Log(mid[i])
		if i > 0 {
			logret[i] = curLog - prevLog
		}
		prevLog = curLog
	}

	return mid, logret
}

// CheckPositivePrices returns ErrNonPositivePrice for the first bar whose
// mid-price is not a positive finite number.
func CheckPositivePrices(bars []domain.Bar) error {
	for _, b := range bars {
		m := (b.High + b.Low) / 2.0
		if !(m > 0) || math.IsInf(m, 1) {
			return &PriceError{Ts: b.Ts, Mid: m}
		}
	}
	return nil
}
