package domain

import "testing"

func TestParseSide(t *testing.T) {
	tests := []struct {
		token string
		want  Side
	}{
		{"buy", SideBuy},
		{"BUY", SideBuy},
		{"B", SideBuy},
		{"+1", SideBuy},
		{"1", SideBuy},
		{"sell", SideSell},
		{"Sell", SideSell},
		{"s", SideSell},
		{"-1", SideSell},
		{"", SideUnknown},
		{"long", SideUnknown},
		{"nan", SideUnknown},
		{"1.0", SideUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := ParseSide(tt.token); got != tt.want {
				t.Errorf("ParseSide(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestSideString(t *testing.T) {
	if SideBuy.String() != "buy" || SideSell.String() != "sell" || SideUnknown.String() != "unknown" {
		t.Errorf("unexpected side strings: %s %s %s", SideBuy, SideSell, SideUnknown)
	}
}

func TestQuoteFill_Fill(t *testing.T) {
	f := QuoteFill{Ts: 120, OrderID: 7, Side: SideSell, Px: 10.5, Qty: 3}.Fill()

	if f.Ts != 120 || f.Qty != 3 || !f.HasSide {
		t.Fatalf("unexpected fill %+v", f)
	}
	if ParseSide(f.Side) != SideSell {
		t.Errorf("Expected side token to parse back to sell, got %q", f.Side)
	}
}
