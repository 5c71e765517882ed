package domain

// FeatureRow is one row of the derived feature table.
// One row exists per input bar, in bar order.
type FeatureRow struct {
	Ts        int64   // bar timestamp (seconds)
	Mid       float64 // (high + low) / 2
	Ret1      float64 // ln(mid[t]) - ln(mid[t-1]), 0 on the first row
	Vol       float64 // rolling sample std of Ret1, 0 while the window is incomplete
	Mom       float64 // rolling sum of Ret1, 0 while the window is incomplete
	Volume    int64   // bar volume, non-negative
	Inventory float64 // signed position as of Ts, 0 before the first fill
}

// FeatureColumns is the output column contract, in order.
var FeatureColumns = []string{"ts", "mid", "ret_1", "vol", "mom", "volume", "inventory"}

// InventoryPoint is the cumulative signed position as of a fill timestamp.
// An inventory series is a slice of points with strictly increasing Ts.
type InventoryPoint struct {
	Ts       int64
	Position float64
}
