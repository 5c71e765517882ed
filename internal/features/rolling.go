package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RollingVolatility computes the trailing sample standard deviation (ddof=1)
// of series over window observations.
// Rows with fewer than window observations of history are 0.
// A single-observation window has no sample dispersion and yields 0.
func RollingVolatility(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 0 {
		return out
	}

	for i := range series {
		if !windowComplete(i, window) || window < 2 {
			continue
		}
		out[i] = stat.StdDev(series[i-window+1:i+1], nil)
	}

	return out
}

// RollingMomentum computes the trailing sum of series over window observations.
// For log-returns this equals the log-return of price across the window.
// Rows with fewer than window observations of history are 0.
func RollingMomentum(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 0 {
		return out
	}

	for i := range series {
		if !windowComplete(i, window) {
			continue
		}
		out[i] = floats.Sum(series[i-window+1 : i+1])
	}

	return out
}

// windowComplete reports whether index i has window observations ending at i.
func windowComplete(i, window int) bool {
	return i >= window-1
}
