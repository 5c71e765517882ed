package domain

// QuoteFill is an execution against one of the strategy's resting quotes.
type QuoteFill struct {
	Ts      int64   // ts of the bar that crossed the quote
	OrderID uint64  // id assigned when the quote was placed
	Side    Side    // our side: SideBuy for a bid, SideSell for an ask
	Px      float64 // quote price
	Qty     float64 // executed quantity, > 0
}

// Fill converts the execution into a fill table row.
// Feeding these back through the feature engine reproduces the position.
func (f QuoteFill) Fill() Fill {
	return Fill{Ts: f.Ts, Qty: f.Qty, Side: f.Side.String(), HasSide: true}
}

// PnLPoint is the account state after one bar has been processed.
type PnLPoint struct {
	Ts        int64
	Mid       float64 // marking price; the last finite mid seen
	Cash      float64 // realized cash flow from fills
	Inventory float64 // signed position
	Equity    float64 // Cash + Inventory*Mid
}

// PnLColumns is the PnL table column contract, in order.
var PnLColumns = []string{"ts", "mid", "cash", "inventory", "equity"}
