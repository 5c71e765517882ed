package tabular

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseFloat parses a float cell. Blank or malformed cells yield NaN and ok=false.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// parseInt parses an integer cell that may carry a fractional part ("1200.0").
// Fractions truncate toward zero. Values outside the int64 range are rejected.
func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0, false
	}
	return d.IntPart(), true
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// coerceVolume converts a volume cell to a non-negative integer.
// Blank, malformed and negative values become 0; ok reports whether the
// cell was used as-is.
func coerceVolume(s string) (int64, bool) {
	v, ok := parseInt(s)
	if !ok {
		return 0, false
	}
	if v < 0 {
		return 0, false
	}
	return v, true
}

// coerceQty converts a fill quantity. Blank, malformed and non-finite
// values ("nan", "inf") become 0.
func coerceQty(s string) (float64, bool) {
	v, ok := parseFloat(s)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
