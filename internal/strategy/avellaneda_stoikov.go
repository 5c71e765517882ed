package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
)

// AvellanedaStoikov quotes around an inventory-adjusted reservation price.
//
//	sigma = population std of the last VolWindow log mid changes
//	varH  = sigma^2 * HorizonBars
//	r     = mid * (1 + BetaMom*mom) - q * gamma * varH
//	delta = clamp(ln(1 + gamma/kappa)/gamma + gamma*varH/2, MinHalfSpread, MaxHalfSpread)
//	bid   = floor((r - delta)/tick) * tick
//	ask   = ceil((r + delta)/tick) * tick
//
// Both quotes are replaced on every bar with a usable mid.
type AvellanedaStoikov struct {
	p config.AvellanedaStoikov

	returns  []float64
	lastMid  float64
	haveLast bool

	bidID uint64
	askID uint64
}

// NewAvellanedaStoikov creates the strategy. Parameters are not validated;
// use FromConfig for checked construction.
func NewAvellanedaStoikov(p config.AvellanedaStoikov) *AvellanedaStoikov {
	return &AvellanedaStoikov{p: p}
}

// ID returns the strategy identifier including parameters.
func (s *AvellanedaStoikov) ID() string {
	return fmt.Sprintf("AS_g%g_k%g_h%d_w%d_q%g", s.p.Gamma, s.p.Kappa, s.p.HorizonBars, s.p.VolWindow, s.p.QuoteSize)
}

// Step implements Strategy.
func (s *AvellanedaStoikov) Step(in *StepInput) []Action {
	mid := in.Row.Mid
	if math.IsNaN(mid) || math.IsInf(mid, 0) || mid <= 0 {
		return nil
	}

	sigma := s.updateSigma(mid)
	h := max(1, s.p.HorizonBars)
	varH := sigma * sigma * float64(h)

	r := mid - in.Inventory*s.p.Gamma*varH
	if mom := in.Row.Mom; s.p.BetaMom != 0 && !math.IsNaN(mom) && !math.IsInf(mom, 0) {
		r += mid * s.p.BetaMom * mom
	}

	core := math.Log(1+s.p.Gamma/s.p.Kappa) / s.p.Gamma
	delta := clamp(core+0.5*s.p.Gamma*varH, s.p.MinHalfSpread, s.p.MaxHalfSpread)

	bid := roundToTick(r-delta, s.p.Tick, true)
	ask := roundToTick(r+delta, s.p.Tick, false)
	if math.IsNaN(bid) || math.IsNaN(ask) || math.IsInf(bid, 0) || math.IsInf(ask, 0) || bid <= 0 || ask <= 0 {
		return nil
	}

	actions := make([]Action, 0, 4)
	if s.bidID != 0 {
		actions = append(actions, cancelQuote(s.bidID))
	}
	if s.askID != 0 {
		actions = append(actions, cancelQuote(s.askID))
	}

	s.bidID = in.IDs.Next()
	s.askID = in.IDs.Next()
	actions = append(actions,
		newQuote(s.bidID, domain.SideBuy, bid, s.p.QuoteSize),
		newQuote(s.askID, domain.SideSell, ask, s.p.QuoteSize),
	)
	return actions
}

// updateSigma appends ln(mid/lastMid) to the window and returns the
// population std of the window. Fewer than two returns give 0.
func (s *AvellanedaStoikov) updateSigma(mid float64) float64 {
	if s.haveLast {
		s.returns = append(s.returns, math.Log(mid)-math.Log(s.lastMid))
		if s.p.VolWindow > 0 && len(s.returns) > s.p.VolWindow {
			s.returns = s.returns[len(s.returns)-s.p.VolWindow:]
		}
	}
	s.lastMid = mid
	s.haveLast = true

	if len(s.returns) <= 1 {
		return 0
	}
	return stat.PopStdDev(s.returns, nil)
}

// roundToTick rounds bids down and asks up to a multiple of tick.
// Decimal arithmetic keeps 9.95 on the 0.01 grid.
func roundToTick(px, tick float64, isBid bool) float64 {
	if tick <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return px
	}
	t := decimal.NewFromFloat(tick)
	n := decimal.NewFromFloat(px).Div(t)
	if isBid {
		n = n.Floor()
	} else {
		n = n.Ceil()
	}
	return n.Mul(t).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

var _ Strategy = (*AvellanedaStoikov)(nil)
