package backtest

import (
	"testing"

	"bar-feature-lab/internal/domain"
)

func TestLedger_OnTrade(t *testing.T) {
	var l Ledger

	l.OnTrade(domain.SideBuy, 99, 5)
	l.OnTrade(domain.SideSell, 101, 3)
	l.OnTrade(domain.SideUnknown, 500, 1)

	if l.Cash != -192 {
		t.Errorf("Expected cash -192, got %v", l.Cash)
	}
	if l.Inventory != 2 {
		t.Errorf("Expected inventory 2, got %v", l.Inventory)
	}
	if got := l.MarkToMarket(100); got != 8 {
		t.Errorf("Expected mark-to-market 8, got %v", got)
	}
}

func TestLedger_FlatMarkIsCash(t *testing.T) {
	l := Ledger{Cash: 12.5}
	if got := l.MarkToMarket(1e6); got != 12.5 {
		t.Errorf("Expected 12.5, got %v", got)
	}
}
