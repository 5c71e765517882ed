package features

import (
	"fmt"

	"bar-feature-lab/internal/domain"
)

// Columns bundles the per-bar series joined by Assemble.
// Inventory may be nil, which means no fill input: the column is 0.
type Columns struct {
	Mid       []float64
	Ret1      []float64
	Vol       []float64
	Mom       []float64
	Inventory []float64
}

// Assemble joins derived series with the bar table into feature rows.
// Row count and order follow bars exactly; nothing is reordered or dropped.
// Negative volumes are clamped to 0.
func Assemble(bars []domain.Bar, cols Columns) ([]domain.FeatureRow, error) {
	n := len(bars)
	named := []struct {
		name   string
		values []float64
	}{
		{"mid", cols.Mid},
		{"ret_1", cols.Ret1},
		{"vol", cols.Vol},
		{"mom", cols.Mom},
	}
	for _, c := range named {
		if len(c.values) != n {
			return nil, fmt.Errorf("%w: %s has %d values for %d bars", ErrLengthMismatch, c.name, len(c.values), n)
		}
	}
	if cols.Inventory != nil && len(cols.Inventory) != n {
		return nil, fmt.Errorf("%w: inventory has %d values for %d bars", ErrLengthMismatch, len(cols.Inventory), n)
	}

	rows := make([]domain.FeatureRow, n)
	for i, b := range bars {
		volume := b.Volume
		if volume < 0 {
			volume = 0
		}

		var inv float64
		if cols.Inventory != nil {
			inv = cols.Inventory[i]
		}

		rows[i] = domain.FeatureRow{
			Ts:        b.Ts,
			Mid:       cols.Mid[i],
			Ret1:      cols.Ret1[i],
			Vol:       cols.Vol[i],
			Mom:       cols.Mom[i],
			Volume:    volume,
			Inventory: inv,
		}
	}

	return rows, nil
}
