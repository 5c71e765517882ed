package strategy

import (
	"errors"
	"math"
	"testing"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/domain"
)

func defaultASParams() config.AvellanedaStoikov {
	return config.Default().Backtest.AvellanedaStoikov
}

func step(s Strategy, ids *OrderIDs, mid, inventory float64) []Action {
	return s.Step(&StepInput{
		Row:       domain.FeatureRow{Ts: 1, Mid: mid},
		Inventory: inventory,
		IDs:       ids,
	})
}

// quotes returns the bid and ask prices of the new quotes in actions.
func quotes(t *testing.T, actions []Action) (bid, ask float64) {
	t.Helper()
	bid, ask = math.NaN(), math.NaN()
	for _, a := range actions {
		if a.Type != ActionNew {
			continue
		}
		switch a.Side {
		case domain.SideBuy:
			bid = a.Px
		case domain.SideSell:
			ask = a.Px
		}
	}
	if math.IsNaN(bid) || math.IsNaN(ask) {
		t.Fatalf("expected a bid and an ask, got %+v", actions)
	}
	return bid, ask
}

func TestAvellanedaStoikov_FirstQuote(t *testing.T) {
	s := NewAvellanedaStoikov(defaultASParams())
	ids := &OrderIDs{}

	actions := step(s, ids, 100, 0)
	if len(actions) != 2 {
		t.Fatalf("Expected 2 new quotes, got %d", len(actions))
	}

	// sigma is 0: delta = ln(1.1)/0.1 = 0.9531
	bid, ask := quotes(t, actions)
	if bid != 99.04 || ask != 100.96 {
		t.Errorf("Expected 99.04/100.96, got %v/%v", bid, ask)
	}
	if actions[0].OrderID != 1 || actions[1].OrderID != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", actions[0].OrderID, actions[1].OrderID)
	}
	if actions[0].Qty != 100 {
		t.Errorf("Expected quote size 100, got %v", actions[0].Qty)
	}
}

func TestAvellanedaStoikov_ReplacesQuotesEveryBar(t *testing.T) {
	s := NewAvellanedaStoikov(defaultASParams())
	ids := &OrderIDs{}

	step(s, ids, 100, 0)
	actions := step(s, ids, 100, 0)

	if len(actions) != 4 {
		t.Fatalf("Expected 2 cancels and 2 new quotes, got %+v", actions)
	}
	if actions[0].Type != ActionCancel || actions[0].OrderID != 1 {
		t.Errorf("Expected cancel of bid 1, got %+v", actions[0])
	}
	if actions[1].Type != ActionCancel || actions[1].OrderID != 2 {
		t.Errorf("Expected cancel of ask 2, got %+v", actions[1])
	}
	if actions[2].OrderID != 3 || actions[3].OrderID != 4 {
		t.Errorf("Expected new ids 3 and 4, got %d and %d", actions[2].OrderID, actions[3].OrderID)
	}
}

func TestAvellanedaStoikov_LongInventoryLowersQuotes(t *testing.T) {
	flat := NewAvellanedaStoikov(defaultASParams())
	long := NewAvellanedaStoikov(defaultASParams())
	flatIDs, longIDs := &OrderIDs{}, &OrderIDs{}

	var flatActions, longActions []Action
	for _, mid := range []float64{100, 110, 100} {
		flatActions = step(flat, flatIDs, mid, 0)
		longActions = step(long, longIDs, mid, 10)
	}

	flatBid, flatAsk := quotes(t, flatActions)
	longBid, longAsk := quotes(t, longActions)
	if !(longBid < flatBid && longAsk < flatAsk) {
		t.Errorf("Expected long inventory to shift quotes down: flat %v/%v long %v/%v",
			flatBid, flatAsk, longBid, longAsk)
	}
	if flatBid != 99.04 || flatAsk != 100.96 {
		t.Errorf("Expected flat quotes 99.04/100.96, got %v/%v", flatBid, flatAsk)
	}
	if longBid != 98.99 || longAsk != 100.91 {
		t.Errorf("Expected long quotes 98.99/100.91, got %v/%v", longBid, longAsk)
	}
}

func TestAvellanedaStoikov_HalfSpreadClamped(t *testing.T) {
	p := defaultASParams()
	p.MaxHalfSpread = 0.5
	s := NewAvellanedaStoikov(p)

	bid, ask := quotes(t, step(s, &OrderIDs{}, 100, 0))
	if bid != 99.5 || ask != 100.5 {
		t.Errorf("Expected 99.5/100.5, got %v/%v", bid, ask)
	}
}

func TestAvellanedaStoikov_MomentumTilt(t *testing.T) {
	p := defaultASParams()
	p.BetaMom = 1
	p.MaxHalfSpread = 0.5
	s := NewAvellanedaStoikov(p)

	actions := s.Step(&StepInput{Row: domain.FeatureRow{Mid: 100, Mom: 0.01}, IDs: &OrderIDs{}})
	bid, ask := quotes(t, actions)
	if bid != 100.5 || ask != 101.5 {
		t.Errorf("Expected quotes centered on 101, got %v/%v", bid, ask)
	}
}

func TestAvellanedaStoikov_UnusableMid(t *testing.T) {
	s := NewAvellanedaStoikov(defaultASParams())
	ids := &OrderIDs{}

	for _, mid := range []float64{math.NaN(), math.Inf(1), 0, -3} {
		if actions := step(s, ids, mid, 0); len(actions) != 0 {
			t.Errorf("mid %v: expected no actions, got %+v", mid, actions)
		}
	}
}

func TestAvellanedaStoikov_SigmaWindow(t *testing.T) {
	p := defaultASParams()
	p.VolWindow = 2
	s := NewAvellanedaStoikov(p)

	var sigma float64
	for _, mid := range []float64{100, 110, 100, 100} {
		sigma = s.updateSigma(mid)
	}

	if len(s.returns) != 2 {
		t.Fatalf("Expected 2 returns kept, got %d", len(s.returns))
	}
	// window holds -ln(1.1) and 0
	if want := math.Log(1.1) / 2; math.Abs(sigma-want) > 1e-12 {
		t.Errorf("Expected sigma %v, got %v", want, sigma)
	}
}

func TestBaseline_QuotesAndSkew(t *testing.T) {
	s := NewBaseline(config.Default().Backtest.Baseline)
	ids := &OrderIDs{}

	bid, ask := quotes(t, step(s, ids, 100, 0))
	if bid != 99 || ask != 101 {
		t.Errorf("Expected 99/101, got %v/%v", bid, ask)
	}

	if actions := step(s, ids, 100, 0); len(actions) != 0 {
		t.Errorf("Expected unchanged quotes to stay, got %+v", actions)
	}

	actions := step(s, ids, 100, 2)
	if len(actions) != 4 {
		t.Fatalf("Expected 2 cancels and 2 new quotes, got %+v", actions)
	}
	bid, ask = quotes(t, actions)
	if bid != 97 || ask != 99 {
		t.Errorf("Expected skewed 97/99, got %v/%v", bid, ask)
	}
}

func TestBaseline_FallbackMid(t *testing.T) {
	p := config.Default().Backtest.Baseline
	p.FallbackMid = 50
	s := NewBaseline(p)

	bid, ask := quotes(t, step(s, &OrderIDs{}, math.NaN(), 0))
	if bid != 49 || ask != 51 {
		t.Errorf("Expected 49/51 around the fallback mid, got %v/%v", bid, ask)
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Backtest)
		wantID  string
		wantErr error
	}{
		{"default", func(*config.Backtest) {}, "AS_", nil},
		{"empty name", func(c *config.Backtest) { c.Strategy = "" }, "AS_", nil},
		{"baseline", func(c *config.Backtest) { c.Strategy = config.StrategyBaseline }, "BASELINE_", nil},
		{"unknown", func(c *config.Backtest) { c.Strategy = "twap" }, "", ErrUnknownStrategyType},
		{"zero gamma", func(c *config.Backtest) { c.AvellanedaStoikov.Gamma = 0 }, "", ErrInvalidGamma},
		{"negative kappa", func(c *config.Backtest) { c.AvellanedaStoikov.Kappa = -1 }, "", ErrInvalidKappa},
		{"min above max", func(c *config.Backtest) { c.AvellanedaStoikov.MinHalfSpread = 2 }, "", ErrInvalidHalfSpread},
		{"zero quote size", func(c *config.Backtest) { c.AvellanedaStoikov.QuoteSize = 0 }, "", ErrInvalidQuoteSize},
		{"baseline negative spread", func(c *config.Backtest) {
			c.Strategy = config.StrategyBaseline
			c.Baseline.Spread = -1
		}, "", ErrInvalidSpread},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Backtest
			tt.mutate(&cfg)

			s, err := FromConfig(cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig failed: %v", err)
			}
			if id := s.ID(); len(id) < len(tt.wantID) || id[:len(tt.wantID)] != tt.wantID {
				t.Errorf("Expected id prefix %s, got %s", tt.wantID, id)
			}
		})
	}
}
