package domain

// RunRecord describes one completed feature-pipeline run.
type RunRecord struct {
	RunID        string // uuid v4
	SeriesID     string // see idhash.ComputeSeriesID
	Source       string // bar file name
	VolWindow    int
	MomWindow    int
	StrictPrices bool // non-positive mids were rejected instead of producing NaN/Inf
	Rows         int
	Digest       string // base58 SHA256 of the rendered feature table
	CreatedAt    int64  // unix milliseconds
}
