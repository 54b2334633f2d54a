package ports

import "context"

// Well-known keys in the session-local store. These mirror the storefront's
// persisted browser state: each is an independently readable/writable string
// surviving process restarts until explicitly cleared.
const (
	KeyGuestCart  = "cart"       // JSON map productID → quantity
	KeyCredential = "auth-token" // bearer credential
	KeyLoggedIn   = "logged-in"  // "true" while a credential is persisted
	KeyTheme      = "theme"      // UI theme preference
)

// LocalStore is a per-session string key/value namespace — the gateway's
// analog of browser local storage. Concurrent writers to the same session
// (multiple tabs) race last-writer-wins; this is a documented limitation,
// not something the store compensates for.
type LocalStore interface {
	// Get returns domain.ErrKeyNotFound for absent keys.
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}
