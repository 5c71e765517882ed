package strategy

import "bar-feature-lab/internal/domain"

// ActionType says what an Action does to the quote book.
type ActionType uint8

// Action types.
const (
	ActionNew ActionType = iota
	ActionCancel
)

func (t ActionType) String() string {
	switch t {
	case ActionNew:
		return "new"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Action is one change to the strategy's resting quotes.
// Cancel only reads OrderID.
type Action struct {
	Type    ActionType
	OrderID uint64
	Side    domain.Side
	Px      float64
	Qty     float64
}

func newQuote(id uint64, side domain.Side, px, qty float64) Action {
	return Action{Type: ActionNew, OrderID: id, Side: side, Px: px, Qty: qty}
}

func cancelQuote(id uint64) Action {
	return Action{Type: ActionCancel, OrderID: id}
}
