package features

import (
	"math"
	"sort"

	"bar-feature-lab/internal/domain"
	"bar-feature-lab/internal/lookup"
)

// SignedQty collapses a fill into a signed quantity.
//   - no side column: qty is taken as already signed
//   - buy tokens {buy, +1, b, 1}: +qty
//   - sell tokens {sell, -1, s}: -qty
//   - anything else: 0 (the fill does not move the position)
//
// A NaN or infinite qty contributes 0.
func SignedQty(f domain.Fill) float64 {
	if math.IsNaN(f.Qty) || math.IsInf(f.Qty, 0) {
		return 0
	}
	if !f.HasSide {
		return f.Qty
	}
	switch domain.ParseSide(f.Side) {
	case domain.SideBuy:
		return f.Qty
	case domain.SideSell:
		return -f.Qty
	default:
		return 0
	}
}

// SignFills converts fills into signed fills, preserving input order.
func SignFills(fills []domain.Fill) []domain.SignedFill {
	out := make([]domain.SignedFill, len(fills))
	for i, f := range fills {
		out[i] = domain.SignedFill{Ts: f.Ts, Qty: SignedQty(f)}
	}
	return out
}

// ReconstructInventory integrates fills into a cumulative position series.
// Steps:
//  1. Sign each fill
//  2. Net signed quantities sharing the exact same Ts
//  3. Sort the netted groups by Ts ascending
//  4. Running sum over the groups
//
// The result has strictly increasing Ts. Fills need not be sorted.
func ReconstructInventory(fills []domain.Fill) []domain.InventoryPoint {
	if len(fills) == 0 {
		return nil
	}

	// Net by timestamp
	net := make(map[int64]float64)
	for _, sf := range SignFills(fills) {
		net[sf.Ts] += sf.Qty
	}

	points := make([]domain.InventoryPoint, 0, len(net))
	for ts, qty := range net {
		points = append(points, domain.InventoryPoint{Ts: ts, Position: qty})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Ts < points[j].Ts
	})

	// Integrate
	var position float64
	for i := range points {
		position += points[i].Position
		points[i].Position = position
	}

	return points
}

// AlignInventory looks up, for each bar timestamp, the last known position at
// or before it. Bars before the first fill get 0; the position holds constant
// after the last fill.
func AlignInventory(barTs []int64, series []domain.InventoryPoint) []float64 {
	out := make([]float64, len(barTs))
	for i, ts := range barTs {
		out[i] = lookup.InventoryAt(ts, series)
	}
	return out
}
