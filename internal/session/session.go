package session

import (
	"context"
	"sync"
	"time"

	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// Session bundles the per-visitor stateful services. Each browser session
// owns exactly one AccessControl and one CartStore; the two are wired
// together at construction so that login and logout drive cart merges and
// resets without the HTTP layer having to orchestrate anything.
type Session struct {
	ID     string
	Access ports.AccessControl
	Cart   ports.CartStore

	initOnce sync.Once
	lastSeen time.Time
}

// init replays durable state exactly once. Concurrent callers block until
// the first initialization completes, so the one-shot guest cart merge can
// never run twice for the same session instance.
func (s *Session) init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.Access.Initialize(ctx)
		s.Cart.Initialize(ctx)
	})
}

// Touch records activity so the manager's sweeper keeps the session alive.
func (s *Session) Touch(now time.Time) {
	s.lastSeen = now
}
