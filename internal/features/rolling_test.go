package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingVolatility_WarmUpIsZero(t *testing.T) {
	series := []float64{0, 0.01, -0.02, 0.03, 0.015, -0.005, 0.002}
	const window = 4

	vol := RollingVolatility(series, window)
	require.Len(t, vol, len(series))

	for i := 0; i < window-1; i++ {
		assert.Equal(t, 0.0, vol[i], "vol[%d] should be 0 during warm-up", i)
	}
	for i := window - 1; i < len(series); i++ {
		assert.Greater(t, vol[i], 0.0, "vol[%d] should be positive once warm", i)
	}
}

func TestRollingVolatility_SampleStd(t *testing.T) {
	series := []float64{1, 2, 3, 4}

	vol := RollingVolatility(series, 4)

	// mean 2.5, squared deviations 2.25+0.25+0.25+2.25 = 5, / (n-1) = 5/3
	assert.InDelta(t, math.Sqrt(5.0/3.0), vol[3], 1e-12)
}

func TestRollingVolatility_WindowOfOne(t *testing.T) {
	vol := RollingVolatility([]float64{0.1, -0.2, 0.3}, 1)
	assert.Equal(t, []float64{0, 0, 0}, vol)
}

func TestRollingVolatility_WindowLongerThanSeries(t *testing.T) {
	vol := RollingVolatility([]float64{0.1, -0.2, 0.3}, 10)
	assert.Equal(t, []float64{0, 0, 0}, vol)
}

func TestRollingMomentum_SumIdentity(t *testing.T) {
	ret := []float64{0, 0.1, -0.05, 0.02, 0.03}

	mom := RollingMomentum(ret, 3)
	require.Len(t, mom, len(ret))

	assert.Equal(t, 0.0, mom[0])
	assert.Equal(t, 0.0, mom[1])
	assert.InDelta(t, 0.0+0.1-0.05, mom[2], 1e-12)
	assert.InDelta(t, 0.07, mom[3], 1e-12)
	assert.InDelta(t, -0.05+0.02+0.03, mom[4], 1e-12)
}

func TestRollingMomentum_EqualsLogPriceChange(t *testing.T) {
	prices := []float64{100, 101, 99.5, 102, 103.25, 101}
	ret := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		ret[i] = math.Log(prices[i]) - math.Log(prices[i-1])
	}

	const window = 3
	mom := RollingMomentum(ret, window)

	for i := window; i < len(prices); i++ {
		want := math.Log(prices[i] / prices[i-window])
		assert.InDelta(t, want, mom[i], 1e-12, "mom[%d]", i)
	}
}

func TestRollingStats_NonPositiveWindow(t *testing.T) {
	series := []float64{1, 2, 3}
	assert.Equal(t, []float64{0, 0, 0}, RollingVolatility(series, 0))
	assert.Equal(t, []float64{0, 0, 0}, RollingMomentum(series, -1))
}
