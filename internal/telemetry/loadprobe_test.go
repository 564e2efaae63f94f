package telemetry

import "testing"

func TestCurrentLoadAndSwapReturnsNonNegativeValues(t *testing.T) {
	load, swapPct := CurrentLoadAndSwap()
	if load < 0 {
		t.Fatalf("load = %v, want >= 0", load)
	}
	if swapPct < 0 || swapPct > 100 {
		t.Fatalf("swapPct = %v, want in [0,100]", swapPct)
	}
}
