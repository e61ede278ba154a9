package payout

import "testing"

func TestKey(t *testing.T) {
	if got := Key("M100", ""); got != "M100|MOD_ONLY" {
		t.Fatalf("mod-only key = %s", got)
	}
	if got := Key("M100", "M100A"); got != "M100|M100A" {
		t.Fatalf("breakout key = %s", got)
	}
}
