package reporting

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// describe fills the distribution fields of cs from finite values.
func describe(cs *ColumnStats, values []float64) {
	n := len(values)
	if n == 0 {
		return
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	cs.Min = floats.Min(values)
	cs.Max = floats.Max(values)
	cs.Mean = stat.Mean(values, nil)
	cs.Stddev = sampleStddev(values)
	cs.P10 = computePercentile(sorted, 0.10)
	cs.Median = computePercentile(sorted, 0.50)
	cs.P90 = computePercentile(sorted, 0.90)
}

// sampleStddev is the n-1 standard deviation; a single value has none and yields 0.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
