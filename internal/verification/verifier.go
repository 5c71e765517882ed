// Package verification checks stored feature series against a fresh
// recomputation from the same inputs.
package verification

import (
	"math"

	"bar-feature-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Ts       int64       // row timestamp; 0 for table-level fields
	Field    string      // column name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// VerificationResult contains the result of verifying a single run.
type VerificationResult struct {
	RunID          string
	SeriesID       string
	Match          bool              // true if rows and digest match
	Divergences    []FieldDivergence // list of divergent fields
	StoredRows     int
	ReplayedRows   int
	StoredDigest   string // digest recorded with the run
	ReplayedDigest string // digest of the recomputed table
}

// CompareFeatureRows compares two feature tables row by row.
// Uses FloatTolerance for float64 comparisons; NaN matches NaN.
func CompareFeatureRows(stored, replayed []domain.FeatureRow) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		divergences = append(divergences, FieldDivergence{
			Field:    "rows",
			Expected: len(stored),
			Actual:   len(replayed),
		})
	}

	n := len(stored)
	if len(replayed) < n {
		n = len(replayed)
	}

	for i := 0; i < n; i++ {
		divergences = append(divergences, compareRow(stored[i], replayed[i])...)
	}

	return divergences
}

func compareRow(stored, replayed domain.FeatureRow) []FieldDivergence {
	var divergences []FieldDivergence

	// ts must match exactly
	if stored.Ts != replayed.Ts {
		return append(divergences, FieldDivergence{
			Ts:       stored.Ts,
			Field:    "ts",
			Expected: stored.Ts,
			Actual:   replayed.Ts,
		})
	}

	floats := []struct {
		name     string
		expected float64
		actual   float64
	}{
		{"mid", stored.Mid, replayed.Mid},
		{"ret_1", stored.Ret1, replayed.Ret1},
		{"vol", stored.Vol, replayed.Vol},
		{"mom", stored.Mom, replayed.Mom},
		{"inventory", stored.Inventory, replayed.Inventory},
	}
	for _, f := range floats {
		if !floatEquals(f.expected, f.actual) {
			divergences = append(divergences, FieldDivergence{
				Ts:       stored.Ts,
				Field:    f.name,
				Expected: f.expected,
				Actual:   f.actual,
			})
		}
	}

	// volume is an integer column
	if stored.Volume != replayed.Volume {
		divergences = append(divergences, FieldDivergence{
			Ts:       stored.Ts,
			Field:    "volume",
			Expected: stored.Volume,
			Actual:   replayed.Volume,
		})
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
// Non-finite values must match exactly.
func floatEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= FloatTolerance
}
