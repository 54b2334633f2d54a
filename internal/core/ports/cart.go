package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

// CartView is the snapshot returned by cart mutations and reads.
type CartView struct {
	Phase domain.CartPhase `json:"phase"`
	Items domain.CartItems `json:"items"`
}

// CartStore maintains one session's cart across guest and authenticated
// modes, including the one-time merge on the guest→authenticated transition.
//
// Mutations return a success/failure result rather than panicking; on remote
// failure the optimistic local change is reverted so the view never silently
// diverges from server truth.
type CartStore interface {
	// Initialize loads the persisted guest cart, or — when the session is
	// already authenticated — merges any leftover guest cart and fetches the
	// remote cart. Idempotent.
	Initialize(ctx context.Context)

	// AddItem increments the quantity of productID by one.
	AddItem(ctx context.Context, productID string) (CartView, error)

	// RemoveItem decrements the quantity of productID by one, removing the
	// key at zero. A no-op for products not in the cart.
	RemoveItem(ctx context.Context, productID string) (CartView, error)

	// View returns the current phase and item snapshot.
	View() CartView

	// TotalAmount sums quantity × current catalog price over all items.
	// Products missing from the snapshot are skipped, not fatal.
	TotalAmount(ctx context.Context) (decimal.Decimal, error)

	// TotalItemCount sums all quantities.
	TotalItemCount() int

	// Refresh re-reads the source of truth: the remote cart when
	// authenticated (e.g. after order placement emptied it), the persisted
	// guest cart otherwise.
	Refresh(ctx context.Context) error

	// SyncForCheckout pushes the full local item map to the remote cart's
	// bulk reconcile endpoint. Authenticated sessions only.
	SyncForCheckout(ctx context.Context) error
}
