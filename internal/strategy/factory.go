package strategy

import (
	"errors"

	"bar-feature-lab/internal/config"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrInvalidGamma        = errors.New("avellaneda_stoikov requires gamma > 0")
	ErrInvalidKappa        = errors.New("avellaneda_stoikov requires kappa > 0")
	ErrInvalidHalfSpread   = errors.New("avellaneda_stoikov requires 0 <= min_half_spread <= max_half_spread")
	ErrInvalidQuoteSize    = errors.New("quote size must be positive")
	ErrInvalidSpread       = errors.New("baseline requires spread >= 0")
)

// FromConfig creates a Strategy from the backtest section of the config.
// An empty strategy name selects Avellaneda-Stoikov.
func FromConfig(cfg config.Backtest) (Strategy, error) {
	switch cfg.Strategy {
	case "", config.StrategyAvellanedaStoikov:
		return fromAvellanedaStoikovConfig(cfg.AvellanedaStoikov)
	case config.StrategyBaseline:
		return fromBaselineConfig(cfg.Baseline)
	default:
		return nil, ErrUnknownStrategyType
	}
}

func fromAvellanedaStoikovConfig(p config.AvellanedaStoikov) (*AvellanedaStoikov, error) {
	if !(p.Gamma > 0) {
		return nil, ErrInvalidGamma
	}
	if !(p.Kappa > 0) {
		return nil, ErrInvalidKappa
	}
	if p.MinHalfSpread < 0 || p.MinHalfSpread > p.MaxHalfSpread {
		return nil, ErrInvalidHalfSpread
	}
	if !(p.QuoteSize > 0) {
		return nil, ErrInvalidQuoteSize
	}
	return NewAvellanedaStoikov(p), nil
}

func fromBaselineConfig(p config.Baseline) (*Baseline, error) {
	if p.Spread < 0 {
		return nil, ErrInvalidSpread
	}
	if !(p.Qty > 0) {
		return nil, ErrInvalidQuoteSize
	}
	return NewBaseline(p), nil
}
