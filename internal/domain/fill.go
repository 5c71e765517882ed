package domain

import "strings"

// Side classifies the direction of a fill.
type Side int

// Side constants
const (
	SideUnknown Side = 0
	SideBuy     Side = 1
	SideSell    Side = -1
)

// Fill represents a single executed trade quantity, optionally tagged with direction.
// Multiple fills may share a timestamp; fills are not required to be sorted.
type Fill struct {
	Ts      int64   // Unix timestamp in seconds
	Qty     float64 // executed quantity
	Side    string  // raw side token as read from the source
	HasSide bool    // false when the source carries no side column (Qty is already signed)
}

// SignedFill is a fill collapsed into a single signed quantity.
type SignedFill struct {
	Ts  int64
	Qty float64
}

// Fill table columns.
const (
	FillColumnTs   = "ts"
	FillColumnQty  = "qty"
	FillColumnSide = "side"
)

// Recognized side tokens, compared after lowercasing.
var (
	buyTokens  = map[string]struct{}{"buy": {}, "+1": {}, "b": {}, "1": {}}
	sellTokens = map[string]struct{}{"sell": {}, "-1": {}, "s": {}}
)

// ParseSide maps a raw side token to a Side.
// Matching is case-insensitive; anything unrecognized is SideUnknown.
func ParseSide(token string) Side {
	t := strings.ToLower(token)
	if _, ok := buyTokens[t]; ok {
		return SideBuy
	}
	if _, ok := sellTokens[t]; ok {
		return SideSell
	}
	return SideUnknown
}

// String returns the canonical token for the side.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}
