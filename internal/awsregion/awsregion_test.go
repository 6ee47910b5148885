package awsregion

import "testing"

func TestByDigitResolvesQuickSwitchRegions(t *testing.T) {
	for i, want := range QuickSwitchRegions {
		got, ok := ByDigit(byte('0' + i))
		if !ok {
			t.Fatalf("digit %d: expected a match", i)
		}
		if got != want {
			t.Fatalf("digit %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestByDigitRejectsOutOfRange(t *testing.T) {
	if _, ok := ByDigit('6'); ok {
		t.Fatalf("expected digit past the quick-switch list to be rejected")
	}
	if _, ok := ByDigit('a'); ok {
		t.Fatalf("expected a non-digit byte to be rejected")
	}
}

func TestEffectiveRegionPinsGlobalServices(t *testing.T) {
	if got := EffectiveRegion("eu-west-1", true); got != GlobalSigningRegion {
		t.Fatalf("expected global services pinned to %q, got %q", GlobalSigningRegion, got)
	}
	if got := EffectiveRegion("eu-west-1", false); got != "eu-west-1" {
		t.Fatalf("expected regional services to use the user region, got %q", got)
	}
}
