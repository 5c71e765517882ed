package backtest

import "bar-feature-lab/internal/domain"

// Ledger tracks cash and position for the quoting account.
type Ledger struct {
	Cash      float64
	Inventory float64
}

// OnTrade books one of our executions: buys spend cash, sells earn it.
func (l *Ledger) OnTrade(side domain.Side, px, qty float64) {
	notional := px * qty
	switch side {
	case domain.SideBuy:
		l.Inventory += qty
		l.Cash -= notional
	case domain.SideSell:
		l.Inventory -= qty
		l.Cash += notional
	}
}

// MarkToMarket values the account at mid: realized cash plus open position.
func (l *Ledger) MarkToMarket(mid float64) float64 {
	return l.Cash + l.Inventory*mid
}
