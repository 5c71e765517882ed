package lookup

import (
	"sort"

	"bar-feature-lab/internal/domain"
)

// InventoryAt returns the position at or before target timestamp.
// Series must be sorted by Ts ascending with unique keys.
// Returns 0 if the series is empty or target precedes the first point.
// After the last point the last position is held constant.
func InventoryAt(target int64, series []domain.InventoryPoint) float64 {
	idx := IndexAtOrBefore(target, series)
	if idx < 0 {
		return 0
	}
	return series[idx].Position
}

// IndexAtOrBefore returns the index of the last point with Ts <= target,
// or -1 if no such point exists.
func IndexAtOrBefore(target int64, series []domain.InventoryPoint) int {
	// first index with Ts > target
	i := sort.Search(len(series), func(i int) bool {
		return series[i].Ts > target
	})
	return i - 1
}
