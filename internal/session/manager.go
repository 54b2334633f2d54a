package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesi0621/storefront-gateway/internal/api/metrics"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
	"github.com/mesi0621/storefront-gateway/internal/core/service"
)

const sweepInterval = 5 * time.Minute

// Dependencies holds everything a session needs. The manager clones nothing;
// all collaborators are shared and must be safe for concurrent use.
type Dependencies struct {
	Store        ports.LocalStore
	Auth         ports.AuthClient
	Cart         ports.CartClient
	Catalog      ports.Catalog
	Interactions ports.InteractionSink
	Journal      ports.MergeJournal
	JWTSecret    string
	TTL          time.Duration
	Log          zerolog.Logger
}

// Manager owns the in-memory session table. Sessions are created lazily on
// first resolve and evicted after TTL of inactivity; their durable state
// lives in the LocalStore, so eviction loses nothing a re-resolve cannot
// rebuild.
type Manager struct {
	deps Dependencies
	log  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

func NewManager(deps Dependencies) *Manager {
	return &Manager{
		deps:     deps,
		log:      deps.Log.With().Str("component", "session_manager").Logger(),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// NewID mints a random session identifier for the sid cookie.
func NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Resolve returns the live session for id, building and initializing one if
// it is not cached. Initialization replays durable state from the LocalStore,
// so a session evicted by the sweeper comes back with cart and identity
// intact.
//
// The un-initialized session is published under the manager lock before
// anything touches the store, so concurrent first requests for the same id
// (a browser firing parallel requests after a restart) share one instance
// and one initialization instead of each running the guest cart merge.
func (m *Manager) Resolve(ctx context.Context, id string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = m.build(id)
		m.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	s.Touch(m.now())
	m.mu.Unlock()

	s.init(ctx)
	return s
}

func (m *Manager) build(id string) *Session {
	access := service.NewAccessControl(id, m.deps.Store, m.deps.Auth, m.deps.JWTSecret, m.log)
	cart := service.NewCartStore(id, access, m.deps.Store, m.deps.Cart, m.deps.Catalog, m.deps.Interactions, m.deps.Journal, m.log)
	return &Session{ID: id, Access: access, Cart: cart}
}

// Sweep evicts sessions idle longer than the TTL and reports the new count.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.deps.TTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.log.Debug().Int("evicted", evicted).Int("remaining", len(m.sessions)).Msg("session sweep")
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return evicted
}

// Run sweeps periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
