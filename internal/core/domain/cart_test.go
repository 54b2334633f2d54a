package domain

import "testing"

func TestCartPhaseTransitions(t *testing.T) {
	allowed := []struct{ from, to CartPhase }{
		{PhaseUninitialized, PhaseGuest},
		{PhaseUninitialized, PhaseMerging},
		{PhaseGuest, PhaseMerging},
		{PhaseMerging, PhaseAuthenticated},
		{PhaseAuthenticated, PhaseGuest},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s → %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to CartPhase }{
		{PhaseGuest, PhaseAuthenticated}, // must pass through merging
		{PhaseAuthenticated, PhaseMerging},
		{PhaseMerging, PhaseGuest},
		{PhaseAuthenticated, PhaseUninitialized},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s → %s to be denied", tc.from, tc.to)
		}
	}
}

func TestCartItemsCountAndClone(t *testing.T) {
	items := CartItems{"a": 2, "b": 1}
	if items.Count() != 3 {
		t.Fatalf("expected count 3, got %d", items.Count())
	}

	clone := items.Clone()
	clone["a"] = 9
	if items["a"] != 2 {
		t.Fatalf("clone must be independent of the original")
	}
}
