package idhash

import (
	"testing"
)

func TestComputeSeriesID(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		volWin  int
		momWin  int
		wantLen int // hash length should be 64
	}{
		{
			name:    "default windows",
			source:  "data/raw/SPY_1m.csv",
			volWin:  60,
			momWin:  5,
			wantLen: 64,
		},
		{
			name:    "short windows",
			source:  "QQQ_5m.csv",
			volWin:  10,
			momWin:  2,
			wantLen: 64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSeriesID(tt.source, tt.volWin, tt.momWin, "digest")

			if len(got) != tt.wantLen {
				t.Errorf("ComputeSeriesID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeSeriesID(tt.source, tt.volWin, tt.momWin, "digest")
			if got != got2 {
				t.Errorf("ComputeSeriesID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeSeriesID_DifferentInputs(t *testing.T) {
	base := ComputeSeriesID("SPY_1m.csv", 60, 5, "d1")

	if base == ComputeSeriesID("QQQ_1m.csv", 60, 5, "d1") {
		t.Error("Different source should produce different hash")
	}
	if base == ComputeSeriesID("SPY_1m.csv", 30, 5, "d1") {
		t.Error("Different vol window should produce different hash")
	}
	if base == ComputeSeriesID("SPY_1m.csv", 60, 10, "d1") {
		t.Error("Different mom window should produce different hash")
	}
	if base == ComputeSeriesID("SPY_1m.csv", 60, 5, "d2") {
		t.Error("Different table digest should produce different hash")
	}
}

func TestComputeSeriesID_IgnoresDirectory(t *testing.T) {
	a := ComputeSeriesID("data/raw/SPY_1m.csv", 60, 5, "d1")
	b := ComputeSeriesID("/tmp/elsewhere/SPY_1m.csv", 60, 5, "d1")
	if a != b {
		t.Errorf("expected same id for same file name, got %s != %s", a, b)
	}
}
