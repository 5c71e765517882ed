package domain

// Bar represents one OHLCV observation for a fixed time interval.
// Bars entering the feature engine are unique by Ts and sorted ascending.
type Bar struct {
	Ts     int64   // Unix timestamp in seconds
	Open   float64 // opening price
	High   float64 // highest price in the interval
	Low    float64 // lowest price in the interval
	Close  float64 // closing price
	Volume int64   // traded volume, >= 0
}

// BarColumns lists the required bar table columns in canonical order.
var BarColumns = []string{"ts", "open", "high", "low", "close", "volume"}
