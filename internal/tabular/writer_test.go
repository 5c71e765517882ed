package tabular

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-feature-lab/internal/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{9, "9.0"},
		{-1.5, "-1.5"},
		{0.1, "0.1"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1234567, "1234567.0"},
		{1e16, "1e+16"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestWriteFeatures_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, nil))
	assert.Equal(t, "ts,mid,ret_1,vol,mom,volume,inventory\n", buf.String())
}

func TestWriteFeatures_Rows(t *testing.T) {
	rows := []domain.FeatureRow{
		{Ts: 60, Mid: 9, Ret1: 0, Vol: 0, Mom: 0, Volume: 100, Inventory: 0},
		{Ts: 120, Mid: 10, Ret1: 0.25, Vol: 0.5, Mom: 0.25, Volume: 200, Inventory: -2.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "60,9.0,0.0,0.0,0.0,100,0.0", lines[1])
	assert.Equal(t, "120,10.0,0.25,0.5,0.25,200,-2.5", lines[2])
}

func TestWriteFeaturesFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "processed", "features.csv")

	require.NoError(t, WriteFeaturesFile(path, []domain.FeatureRow{{Ts: 1, Mid: 1}}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "ts,mid,ret_1,vol,mom,volume,inventory\n"))
}

func TestWritePnL(t *testing.T) {
	var buf bytes.Buffer
	points := []domain.PnLPoint{
		{Ts: 60, Mid: math.NaN()},
		{Ts: 120, Mid: 98, Cash: -495, Inventory: 5, Equity: -5},
	}
	require.NoError(t, WritePnL(&buf, points))

	assert.Equal(t, "ts,mid,cash,inventory,equity\n60,,0.0,0.0,0.0\n120,98.0,-495.0,5.0,-5.0\n", buf.String())
}

func TestWriteFills_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	fills := []domain.Fill{
		{Ts: 120, Qty: 5, Side: "buy", HasSide: true},
		{Ts: 180, Qty: 2.5, Side: "sell", HasSide: true},
	}
	require.NoError(t, WriteFills(&buf, fills))

	got, stats, err := ReadFills(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, fills, got)
	assert.Equal(t, 0, stats.CoercedQty)
}
