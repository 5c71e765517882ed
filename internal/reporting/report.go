package reporting

import (
	"time"

	"bar-feature-lab/internal/tabular"
)

// Summary describes one feature-pipeline run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	SeriesID    string
	Source      string
	OutPath     string
	Digest      string
	VolWindow   int
	MomWindow   int

	// Table shape
	Rows    int
	FirstTs int64
	LastTs  int64

	// Input quality
	Input tabular.Stats

	// Per-column statistics in output column order (ts excluded)
	Columns []ColumnStats
}

// ColumnStats summarizes one numeric feature column.
type ColumnStats struct {
	Name      string
	Min       float64 // over finite values
	Max       float64 // over finite values
	Mean      float64 // over finite values
	Stddev    float64 // sample, over finite values
	P10       float64
	Median    float64
	P90       float64
	Zeros     int
	NonFinite int // NaN or ±Inf
}
