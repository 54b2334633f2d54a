package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mesi0621/storefront-gateway/internal/api/metrics"
	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// CartStore implements ports.CartStore for one session.
//
// Phase machine: Uninitialized → Guest → Merging → Authenticated, with
// Authenticated → Guest on logout. Guest mutations persist to the session's
// local store synchronously; authenticated mutations apply optimistically,
// call the remote cart, and reconcile by refetching the authoritative cart.
type CartStore struct {
	sessionID    string
	access       ports.AccessControl
	store        ports.LocalStore
	remote       ports.CartClient
	catalog      ports.Catalog
	interactions ports.InteractionSink
	journal      ports.MergeJournal // optional; nil disables journaling
	log          zerolog.Logger

	// mergeMu serializes the merge against ordinary mutations: the merge
	// takes the write half, add/remove take the read half.
	mergeMu sync.RWMutex

	mu        sync.Mutex
	phase     domain.CartPhase
	items     domain.CartItems
	mergeDone bool   // one merge per login transition
	gen       uint64 // bumped on reset; in-flight refetches of older generations are dropped
	keyLocks  map[string]*sync.Mutex
}

var _ ports.CartStore = (*CartStore)(nil)

func NewCartStore(
	sessionID string,
	access ports.AccessControl,
	store ports.LocalStore,
	remote ports.CartClient,
	catalog ports.Catalog,
	interactions ports.InteractionSink,
	journal ports.MergeJournal,
	log zerolog.Logger,
) *CartStore {
	s := &CartStore{
		sessionID:    sessionID,
		access:       access,
		store:        store,
		remote:       remote,
		catalog:      catalog,
		interactions: interactions,
		journal:      journal,
		log:          log.With().Str("component", "cart").Str("session_id", sessionID).Logger(),
		phase:        domain.PhaseUninitialized,
		items:        domain.CartItems{},
		keyLocks:     map[string]*sync.Mutex{},
	}
	access.OnIdentityChange(s.onIdentityChange)
	return s
}

// Initialize brings the cart out of Uninitialized. With no valid identity it
// becomes a guest cart loaded from local storage; with a valid identity it
// merges any leftover guest cart and adopts the remote cart. Idempotent.
func (s *CartStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.phase != domain.PhaseUninitialized {
		s.mu.Unlock()
		return
	}
	authenticated := s.access.IsAuthenticated()
	if !authenticated {
		s.phase = domain.PhaseGuest
	}
	s.mu.Unlock()

	if authenticated {
		s.merge(ctx, s.access.Current().UserID)
		return
	}

	fresh := s.loadGuestCart(ctx)
	s.mu.Lock()
	s.items = fresh
	s.mu.Unlock()
}

// onIdentityChange reacts to AccessControl transitions. Login triggers the
// one-time merge; logout resets to an empty guest cart — the previous guest
// cart is not restored, the merge consumed it.
func (s *CartStore) onIdentityChange(ctx context.Context, old, new domain.Identity) {
	switch {
	case !old.Authenticated() && new.Authenticated():
		s.merge(ctx, new.UserID)
	case old.Authenticated() && !new.Authenticated():
		s.resetToGuest()
	}
}

func (s *CartStore) resetToGuest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.items = domain.CartItems{}
	s.phase = domain.PhaseGuest
	s.mergeDone = false
}

// AddItem increments productID by one. Guest mode persists synchronously and
// never touches the network. Authenticated mode applies the increment
// optimistically, submits the remote add with the price captured now, then
// refetches the authoritative cart; a remote failure reverts the optimistic
// increment by exactly one and is returned to the caller.
func (s *CartStore) AddItem(ctx context.Context, productID string) (ports.CartView, error) {
	s.mergeMu.RLock()
	defer s.mergeMu.RUnlock()
	unlock := s.lockProduct(productID)
	defer unlock()

	s.mu.Lock()
	phase := s.phase
	gen := s.gen
	s.items[productID]++
	snapshot := s.items.Clone()
	s.mu.Unlock()

	if phase != domain.PhaseAuthenticated {
		if err := s.persistGuestCart(ctx, snapshot); err != nil {
			s.revertAdd(productID)
			metrics.CartMutationsTotal.WithLabelValues("add", "guest", "reverted").Inc()
			return s.View(), fmt.Errorf("persist guest cart: %w", err)
		}
		metrics.CartMutationsTotal.WithLabelValues("add", "guest", "ok").Inc()
		return ports.CartView{Phase: phase, Items: snapshot}, nil
	}

	userID := s.access.Current().UserID

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		s.revertAdd(productID)
		metrics.CartMutationsTotal.WithLabelValues("add", "authenticated", "reverted").Inc()
		return s.View(), err
	}

	line := domain.CartLine{ProductID: productID, Quantity: 1, Price: product.Price}
	if err := s.remote.AddItem(ctx, userID, line); err != nil {
		s.revertAdd(productID)
		metrics.CartMutationsTotal.WithLabelValues("add", "authenticated", "reverted").Inc()
		return s.View(), err
	}

	s.reconcile(ctx, userID, gen)
	s.interactions.Record(ctx, ports.Interaction{ProductID: productID, UserID: userID, Type: "cart_add"})
	metrics.CartMutationsTotal.WithLabelValues("add", "authenticated", "ok").Inc()
	return s.View(), nil
}

// RemoveItem decrements productID by one, removing the key at zero. Removing
// an absent product is a no-op. Authenticated mode mirrors the decrement to
// the remote cart (delete at zero, quantity patch otherwise) and reverts the
// optimistic change on failure.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) (ports.CartView, error) {
	s.mergeMu.RLock()
	defer s.mergeMu.RUnlock()
	unlock := s.lockProduct(productID)
	defer unlock()

	s.mu.Lock()
	phase := s.phase
	gen := s.gen
	current := s.items[productID]
	if current == 0 {
		snapshot := s.items.Clone()
		s.mu.Unlock()
		mode := "guest"
		if phase == domain.PhaseAuthenticated {
			mode = "authenticated"
		}
		metrics.CartMutationsTotal.WithLabelValues("remove", mode, "noop").Inc()
		return ports.CartView{Phase: phase, Items: snapshot}, nil
	}
	remaining := current - 1
	if remaining == 0 {
		delete(s.items, productID)
	} else {
		s.items[productID] = remaining
	}
	snapshot := s.items.Clone()
	s.mu.Unlock()

	if phase != domain.PhaseAuthenticated {
		if err := s.persistGuestCart(ctx, snapshot); err != nil {
			s.restoreQuantity(productID, current)
			metrics.CartMutationsTotal.WithLabelValues("remove", "guest", "reverted").Inc()
			return s.View(), fmt.Errorf("persist guest cart: %w", err)
		}
		metrics.CartMutationsTotal.WithLabelValues("remove", "guest", "ok").Inc()
		return ports.CartView{Phase: phase, Items: snapshot}, nil
	}

	userID := s.access.Current().UserID
	var err error
	if remaining == 0 {
		err = s.remote.RemoveItem(ctx, userID, productID)
	} else {
		err = s.remote.UpdateQuantity(ctx, userID, productID, remaining)
	}
	if err != nil {
		s.restoreQuantity(productID, current)
		metrics.CartMutationsTotal.WithLabelValues("remove", "authenticated", "reverted").Inc()
		return s.View(), err
	}

	s.reconcile(ctx, userID, gen)
	metrics.CartMutationsTotal.WithLabelValues("remove", "authenticated", "ok").Inc()
	return s.View(), nil
}

func (s *CartStore) View() ports.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.CartView{Phase: s.phase, Items: s.items.Clone()}
}

// TotalAmount sums quantity × current catalog price. Prices come from the
// latest snapshot, not from add time, so totals track current pricing.
// Products missing from the snapshot are skipped.
func (s *CartStore) TotalAmount(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	items := s.items.Clone()
	s.mu.Unlock()

	total := decimal.Zero
	for productID, qty := range items {
		product, ok := snapshot[productID]
		if !ok {
			s.log.Debug().Str("product_id", productID).Msg("product missing from catalog snapshot, skipped in total")
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

func (s *CartStore) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Count()
}

// Refresh re-reads the source of truth for the current phase. After order
// placement empties the remote cart, this is how the local view catches up.
func (s *CartStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	phase := s.phase
	gen := s.gen
	s.mu.Unlock()

	if phase != domain.PhaseAuthenticated {
		fresh := s.loadGuestCart(ctx)
		s.mu.Lock()
		if s.gen == gen {
			s.items = fresh
		}
		s.mu.Unlock()
		return nil
	}

	lines, err := s.remote.Fetch(ctx, s.access.Current().UserID)
	if err != nil {
		return err
	}
	s.adoptRemote(lines, gen)
	return nil
}

// SyncForCheckout bulk-reconciles the local item map with the remote cart.
func (s *CartStore) SyncForCheckout(ctx context.Context) error {
	s.mu.Lock()
	phase := s.phase
	items := s.items.Clone()
	s.mu.Unlock()

	if phase != domain.PhaseAuthenticated {
		return domain.ErrNotAuthenticated
	}
	return s.remote.Sync(ctx, s.access.Current().UserID, items)
}

// merge runs the one-time guest→authenticated transfer:
//
//  1. read the persisted guest cart
//  2. resolve each entry's current price; unresolvable products are skipped
//  3. submit each resolved entry as a remote add; per-item failures never
//     abort the rest
//  4. clear the persisted guest cart regardless of partial failures
//  5. fetch the remote cart as the new source of truth
//
// Failed and skipped entries are journaled best-effort so the data loss the
// clear-regardless policy accepts is at least diagnosable.
func (s *CartStore) merge(ctx context.Context, userID string) {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()

	s.mu.Lock()
	if s.mergeDone || !s.phase.CanTransitionTo(domain.PhaseMerging) {
		s.mu.Unlock()
		return
	}
	s.phase = domain.PhaseMerging
	gen := s.gen
	s.mu.Unlock()

	started := time.Now()
	guestItems := s.loadGuestCart(ctx)

	var failures []ports.MergeFailure
	fail := func(productID string, qty int, reason string) {
		failures = append(failures, ports.MergeFailure{
			SessionID:  s.sessionID,
			UserID:     userID,
			ProductID:  productID,
			Quantity:   qty,
			Reason:     reason,
			OccurredAt: time.Now().UTC(),
		})
	}

	if len(guestItems) > 0 {
		snapshot, err := s.catalog.Snapshot(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog snapshot unavailable during merge")
			snapshot = map[string]domain.Product{}
		}

		for productID, qty := range guestItems {
			if qty <= 0 {
				continue
			}
			product, ok := snapshot[productID]
			if !ok {
				metrics.MergeItemsTotal.WithLabelValues("skipped").Inc()
				fail(productID, qty, "product_not_found")
				continue
			}
			line := domain.CartLine{ProductID: productID, Quantity: qty, Price: product.Price}
			if err := s.remote.AddItem(ctx, userID, line); err != nil {
				metrics.MergeItemsTotal.WithLabelValues("failed").Inc()
				fail(productID, qty, "upstream_error")
				s.log.Warn().Err(err).Str("product_id", productID).Msg("merge item failed")
				continue
			}
			metrics.MergeItemsTotal.WithLabelValues("merged").Inc()
		}
	}

	// The guest cart is consumed even when items failed; the journal keeps
	// the only record of what was lost.
	if err := s.store.Delete(ctx, s.sessionID, ports.KeyGuestCart); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted guest cart")
	}
	if len(failures) > 0 && s.journal != nil {
		if err := s.journal.RecordFailures(ctx, failures); err != nil {
			s.log.Warn().Err(err).Int("count", len(failures)).Msg("merge journal write failed")
		}
	}

	lines, err := s.remote.Fetch(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Msg("remote cart fetch after merge failed, starting empty")
		lines = nil
	}

	s.mu.Lock()
	if s.gen == gen {
		s.items = linesToItems(lines)
		s.phase = domain.PhaseAuthenticated
		s.mergeDone = true
	}
	s.mu.Unlock()

	metrics.MergeDuration.Observe(time.Since(started).Seconds())
	s.log.Info().
		Int("submitted", len(guestItems)).
		Int("failures", len(failures)).
		Str("user_id", userID).
		Msg("guest cart merged")
}

// reconcile replaces local state with the authoritative remote cart. A fetch
// failure leaves the optimistic state in place (the mutation itself already
// succeeded remotely); a stale generation means the session logged out while
// the fetch was in flight, so the late response is dropped.
func (s *CartStore) reconcile(ctx context.Context, userID string, gen uint64) {
	lines, err := s.remote.Fetch(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Msg("cart refetch failed, keeping optimistic state")
		return
	}
	s.adoptRemote(lines, gen)
}

func (s *CartStore) adoptRemote(lines []domain.CartLine, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.items = linesToItems(lines)
}

func (s *CartStore) revertAdd(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty := s.items[productID]; qty <= 1 {
		delete(s.items, productID)
	} else {
		s.items[productID] = qty - 1
	}
}

func (s *CartStore) restoreQuantity(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		delete(s.items, productID)
		return
	}
	s.items[productID] = qty
}

// lockProduct serializes mutations per product so rapid-fire add/remove on
// the same product cannot produce lost updates.
func (s *CartStore) lockProduct(productID string) func() {
	s.mu.Lock()
	l, ok := s.keyLocks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[productID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *CartStore) loadGuestCart(ctx context.Context) domain.CartItems {
	raw, err := s.store.Get(ctx, s.sessionID, ports.KeyGuestCart)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.log.Warn().Err(err).Msg("guest cart read failed, starting empty")
		}
		return domain.CartItems{}
	}

	var items domain.CartItems
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn().Err(err).Msg("guest cart blob corrupted, starting empty")
		return domain.CartItems{}
	}
	for productID, qty := range items {
		if qty <= 0 {
			delete(items, productID)
		}
	}
	return items
}

func (s *CartStore) persistGuestCart(ctx context.Context, items domain.CartItems) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	return s.store.Set(ctx, s.sessionID, ports.KeyGuestCart, string(blob))
}

func linesToItems(lines []domain.CartLine) domain.CartItems {
	items := make(domain.CartItems, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			items[l.ProductID] = l.Quantity
		}
	}
	return items
}
