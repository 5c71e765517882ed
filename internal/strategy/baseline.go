package strategy

import (
	"fmt"
	"math"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
)

// Baseline quotes a fixed spread around the mid, shifted against inventory:
//
//	bid = mid - spread/2 - q*skew
//	ask = mid + spread/2 - q*skew
//
// A side is only re-quoted when its target price or size changes.
type Baseline struct {
	p config.Baseline

	bidID, askID uint64
	bidPx, askPx float64
	lastQty      float64
}

// NewBaseline creates the strategy.
func NewBaseline(p config.Baseline) *Baseline {
	return &Baseline{p: p}
}

// ID returns the strategy identifier including parameters.
func (s *Baseline) ID() string {
	return fmt.Sprintf("BASELINE_s%g_k%g_q%g", s.p.Spread, s.p.SkewPerUnit, s.p.Qty)
}

// Step implements Strategy.
func (s *Baseline) Step(in *StepInput) []Action {
	mid := in.Row.Mid
	if math.IsNaN(mid) || math.IsInf(mid, 0) || mid <= 0 {
		mid = s.p.FallbackMid
	}

	half := s.p.Spread / 2
	skew := in.Inventory * s.p.SkewPerUnit
	targetBid := mid - half - skew
	targetAsk := mid + half - skew
	qty := s.p.Qty

	bidStale := s.bidID == 0 || s.bidPx != targetBid || s.lastQty != qty
	askStale := s.askID == 0 || s.askPx != targetAsk || s.lastQty != qty

	var actions []Action
	if bidStale && s.bidID != 0 {
		actions = append(actions, cancelQuote(s.bidID))
		s.bidID = 0
	}
	if askStale && s.askID != 0 {
		actions = append(actions, cancelQuote(s.askID))
		s.askID = 0
	}

	if bidStale {
		s.bidID = in.IDs.Next()
		s.bidPx = targetBid
		actions = append(actions, newQuote(s.bidID, domain.SideBuy, targetBid, qty))
	}
	if askStale {
		s.askID = in.IDs.Next()
		s.askPx = targetAsk
		actions = append(actions, newQuote(s.askID, domain.SideSell, targetAsk, qty))
	}

	s.lastQty = qty
	return actions
}

var _ Strategy = (*Baseline)(nil)
