package features

import (
	"errors"
	"math"
	"testing"

	"bar-feature-lab/internal/domain"
)

func TestBuildPriceSeries_Basic(t *testing.T) {
	bars := []domain.Bar{
		{Ts: 1, High: 10, Low: 8},
		{Ts: 2, High: 11, Low: 9},
		{Ts: 3, High: 9, Low: 7},
	}

	mid, logret := BuildPriceSeries(bars)

	wantMid := []float64{9, 10, 8}
	for i := range wantMid {
		if mid[i] != wantMid[i] {
			t.Errorf("mid[%d]: expected %v, got %v", i, wantMid[i], mid[i])
		}
	}

	wantRet := []float64{0, math.Log(10.0 / 9.0), math.Log(8.0 / 10.0)}
	for i := range wantRet {
		if math.Abs(logret[i]-wantRet[i]) > 1e-12 {
			t.Errorf("logret[%d]: expected %v, got %v", i, wantRet[i], logret[i])
		}
	}
}

func TestBuildPriceSeries_FirstReturnZero(t *testing.T) {
	// First return is defined as 0 whatever the price level
	for _, price := range []float64{0.0001, 1, 42, 1e9} {
		_, logret := BuildPriceSeries([]domain.Bar{{Ts: 1, High: price, Low: price}})
		if logret[0] != 0 {
			t.Errorf("price %v: expected first return 0, got %v", price, logret[0])
		}
	}
}

func TestBuildPriceSeries_Empty(t *testing.T) {
	mid, logret := BuildPriceSeries(nil)
	if len(mid) != 0 || len(logret) != 0 {
		t.Errorf("expected empty series, got %d/%d", len(mid), len(logret))
	}
}

func TestBuildPriceSeries_NonPositiveMidPropagates(t *testing.T) {
	bars := []domain.Bar{
		{Ts: 1, High: 10, Low: 10},
		{Ts: 2, High: 0, Low: 0},
		{Ts: 3, High: 10, Low: 10},
	}

	_, logret := BuildPriceSeries(bars)

	if !math.IsInf(logret[1], -1) {
		t.Errorf("expected -Inf return into zero mid, got %v", logret[1])
	}
	if !math.IsInf(logret[2], 1) {
		t.Errorf("expected +Inf return out of zero mid, got %v", logret[2])
	}
}

func TestCheckPositivePrices(t *testing.T) {
	ok := []domain.Bar{{Ts: 1, High: 2, Low: 1}, {Ts: 2, High: 3, Low: 2}}
	if err := CheckPositivePrices(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []domain.Bar{{Ts: 1, High: 2, Low: 1}, {Ts: 7, High: 1, Low: -3}}
	err := CheckPositivePrices(bad)
	if !errors.Is(err, ErrNonPositivePrice) {
		t.Fatalf("expected ErrNonPositivePrice, got %v", err)
	}

	var pe *PriceError
	if !errors.As(err, &pe) || pe.Ts != 7 {
		t.Errorf("expected PriceError at ts 7, got %v", err)
	}

	nan := []domain.Bar{{Ts: 1, High: math.NaN(), Low: 1}}
	if err := CheckPositivePrices(nan); !errors.Is(err, ErrNonPositivePrice) {
		t.Errorf("expected NaN mid to be rejected, got %v", err)
	}
}
