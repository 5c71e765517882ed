package tabular

// Stats counts rows read and cells coerced while loading input tables.
type Stats struct {
	BarRows        int // bar rows kept after deduplication
	DuplicateBars  int // bar rows dropped for a repeated ts
	CoercedVolume  int // volume cells replaced by 0
	CoercedPrices  int // price cells that did not parse (NaN)
	FillRows       int // fill rows kept
	DroppedFills   int // fill rows dropped for an unparsable ts
	CoercedQty     int // qty cells replaced by 0
	FillsAvailable bool
}

// Coerced returns the total number of coerced cells.
func (s Stats) Coerced() int {
	return s.CoercedVolume + s.CoercedPrices + s.CoercedQty
}

// Merge adds the counters of other into s.
func (s Stats) Merge(other Stats) Stats {
	s.BarRows += other.BarRows
	s.DuplicateBars += other.DuplicateBars
	s.CoercedVolume += other.CoercedVolume
	s.CoercedPrices += other.CoercedPrices
	s.FillRows += other.FillRows
	s.DroppedFills += other.DroppedFills
	s.CoercedQty += other.CoercedQty
	s.FillsAvailable = s.FillsAvailable || other.FillsAvailable
	return s
}
