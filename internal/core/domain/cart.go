package domain

import "github.com/shopspring/decimal"

// CartPhase represents the lifecycle state of a session cart.
type CartPhase string

const (
	PhaseUninitialized CartPhase = "uninitialized"
	PhaseGuest         CartPhase = "guest"
	PhaseMerging       CartPhase = "merging"
	PhaseAuthenticated CartPhase = "authenticated"
)

// validPhaseTransitions defines the allowed cart state machine transitions.
// Authenticated → Guest happens on logout: the cart resets to an empty guest
// cart, never repopulated from the pre-login session (the merge consumed it).
var validPhaseTransitions = map[CartPhase][]CartPhase{
	PhaseUninitialized: {PhaseGuest, PhaseMerging},
	PhaseGuest:         {PhaseMerging},
	PhaseMerging:       {PhaseAuthenticated},
	PhaseAuthenticated: {PhaseGuest},
}

// CanTransitionTo reports whether a transition from the current phase to next is valid.
func (p CartPhase) CanTransitionTo(next CartPhase) bool {
	for _, allowed := range validPhaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CartLine is one entry of the remote (server-side) cart.
type CartLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// CartItems maps productID → quantity. Quantities are always positive while
// a key is present; decrementing to zero removes the key.
type CartItems map[string]int

// Clone returns an independent copy of the item map.
func (c CartItems) Clone() CartItems {
	out := make(CartItems, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// Count returns the sum of all quantities.
func (c CartItems) Count() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}
