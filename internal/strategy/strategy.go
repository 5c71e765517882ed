// Package strategy holds the quoting strategies replayed by the backtest.
package strategy

import "bar-feature-lab/internal/domain"

// Strategy decides, once per bar, how to change its resting quotes.
type Strategy interface {
	// Step sees one feature row and the position after that bar's fills.
	// The returned actions are applied before the next bar is matched.
	Step(input *StepInput) []Action

	// ID returns strategy identifier (includes parameters).
	ID() string
}

// StepInput is the state handed to a strategy for one bar.
type StepInput struct {
	Row       domain.FeatureRow
	Inventory float64
	IDs       *OrderIDs
}

// OrderIDs hands out quote ids, starting at 1. Zero means "no quote".
type OrderIDs struct {
	last uint64
}

// Next returns a fresh id.
func (g *OrderIDs) Next() uint64 {
	g.last++
	return g.last
}
