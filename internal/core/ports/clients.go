package ports

import (
	"context"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
)

// AuthClient is the external auth collaborator. It returns a signed bearer
// token decodable into {userId, email, username, role, permissions, exp}.
type AuthClient interface {
	Login(ctx context.Context, creds Credentials) (token string, err error)
	Signup(ctx context.Context, input SignupInput) (token string, err error)
}

// CartClient is the remote cart service owning the authenticated user's
// server-side cart.
type CartClient interface {
	Fetch(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddItem(ctx context.Context, userID string, line domain.CartLine) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	// Sync bulk-reconciles the full local cart before checkout.
	Sync(ctx context.Context, userID string, items domain.CartItems) error
}

// Catalog exposes the latest known product snapshot. Lookups reflect current
// pricing, not prices captured at add time.
type Catalog interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Snapshot(ctx context.Context) (map[string]domain.Product, error)
}

// Interaction is a best-effort analytics event.
type Interaction struct {
	ProductID string `json:"productId"`
	UserID    string `json:"userId"`
	Type      string `json:"type"`
}

// InteractionSink records analytics events. Fire-and-forget: implementations
// must never block the caller on delivery, and delivery failures must never
// propagate into cart operations.
type InteractionSink interface {
	Record(ctx context.Context, event Interaction)
}
