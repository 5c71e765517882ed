package backtest

import (
	"bar-feature-lab/internal/domain"
)

// restingQuote is a live strategy quote waiting for the market to reach it.
type restingQuote struct {
	id   uint64
	side domain.Side
	px   float64
	qty  float64 // remaining
}

// book keeps resting quotes in placement order.
type book struct {
	quotes []*restingQuote
}

func (b *book) add(q *restingQuote) {
	b.quotes = append(b.quotes, q)
}

// cancel removes the quote with id; false if it is not resting.
func (b *book) cancel(id uint64) bool {
	for i, q := range b.quotes {
		if q.id == id {
			b.quotes = append(b.quotes[:i], b.quotes[i+1:]...)
			return true
		}
	}
	return false
}

// match executes quotes the bar's mid has reached.
// A bid fills when mid <= px, an ask when mid >= px, at the quote price.
// Executions share the bar's volume in placement order; fully filled
// quotes leave the book.
func (b *book) match(row domain.FeatureRow) []domain.QuoteFill {
	available := float64(row.Volume)
	if available <= 0 {
		return nil
	}

	var fills []domain.QuoteFill
	kept := b.quotes[:0]
	for _, q := range b.quotes {
		crossed := (q.side == domain.SideBuy && row.Mid <= q.px) ||
			(q.side == domain.SideSell && row.Mid >= q.px)
		if crossed && available > 0 {
			qty := min(q.qty, available)
			available -= qty
			q.qty -= qty
			fills = append(fills, domain.QuoteFill{
				Ts:      row.Ts,
				OrderID: q.id,
				Side:    q.side,
				Px:      q.px,
				Qty:     qty,
			})
		}
		if q.qty > 0 {
			kept = append(kept, q)
		}
	}
	b.quotes = kept
	return fills
}

func (b *book) len() int {
	return len(b.quotes)
}
