package lookup

import (
	"testing"

	"bar-feature-lab/internal/domain"
)

func TestInventoryAt_EmptySeries(t *testing.T) {
	if got := InventoryAt(1000, nil); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}

	if got := InventoryAt(1000, []domain.InventoryPoint{}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestInventoryAt_ExactMatch(t *testing.T) {
	series := []domain.InventoryPoint{
		{Ts: 1000, Position: 1.0},
		{Ts: 2000, Position: 2.0},
		{Ts: 3000, Position: 3.0},
	}

	if got := InventoryAt(2000, series); got != 2.0 {
		t.Errorf("expected 2.0, got %f", got)
	}
}

func TestInventoryAt_BetweenPoints(t *testing.T) {
	series := []domain.InventoryPoint{
		{Ts: 1000, Position: 1.0},
		{Ts: 2000, Position: 2.0},
		{Ts: 3000, Position: 3.0},
	}

	// Target 2500 should return position at 2000
	if got := InventoryAt(2500, series); got != 2.0 {
		t.Errorf("expected 2.0, got %f", got)
	}
}

func TestInventoryAt_BeforeFirst(t *testing.T) {
	series := []domain.InventoryPoint{
		{Ts: 1000, Position: 5.0},
		{Ts: 2000, Position: 2.0},
	}

	// Nothing known yet: flat
	if got := InventoryAt(500, series); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestInventoryAt_AfterLast(t *testing.T) {
	series := []domain.InventoryPoint{
		{Ts: 1000, Position: 1.0},
		{Ts: 2000, Position: -4.0},
	}

	if got := InventoryAt(5000, series); got != -4.0 {
		t.Errorf("expected -4.0, got %f", got)
	}
}

func TestIndexAtOrBefore(t *testing.T) {
	series := []domain.InventoryPoint{
		{Ts: 10}, {Ts: 20}, {Ts: 30},
	}

	tests := []struct {
		target int64
		want   int
	}{
		{5, -1},
		{10, 0},
		{15, 0},
		{20, 1},
		{29, 1},
		{30, 2},
		{100, 2},
	}

	for _, tt := range tests {
		if got := IndexAtOrBefore(tt.target, series); got != tt.want {
			t.Errorf("IndexAtOrBefore(%d) = %d, want %d", tt.target, got, tt.want)
		}
	}
}
