package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mesi0621/storefront-gateway/internal/api/middleware"
	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
	"github.com/mesi0621/storefront-gateway/internal/session"
)

type stubCartStore struct {
	view    ports.CartView
	addErr  error
	total   decimal.Decimal
	syncErr error

	added   []string
	removed []string
	synced  bool
}

func (s *stubCartStore) Initialize(context.Context) {}

func (s *stubCartStore) AddItem(_ context.Context, productID string) (ports.CartView, error) {
	if s.addErr != nil {
		return s.view, s.addErr
	}
	s.added = append(s.added, productID)
	return s.view, nil
}

func (s *stubCartStore) RemoveItem(_ context.Context, productID string) (ports.CartView, error) {
	s.removed = append(s.removed, productID)
	return s.view, nil
}

func (s *stubCartStore) View() ports.CartView { return s.view }

func (s *stubCartStore) TotalAmount(context.Context) (decimal.Decimal, error) {
	return s.total, nil
}

func (s *stubCartStore) TotalItemCount() int {
	n := 0
	for _, q := range s.view.Items {
		n += q
	}
	return n
}

func (s *stubCartStore) Refresh(context.Context) error { return nil }

func (s *stubCartStore) SyncForCheckout(context.Context) error {
	if s.syncErr != nil {
		return s.syncErr
	}
	s.synced = true
	return nil
}

func cartContext(t *testing.T, method, path string, cart ports.CartStore) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SessionKey, &session.Session{ID: "sid", Cart: cart})
	return c, rec
}

func TestCartHandler_View(t *testing.T) {
	cart := &stubCartStore{view: ports.CartView{
		Phase: domain.PhaseGuest,
		Items: domain.CartItems{"P1": 2, "P2": 1},
	}}
	c, rec := cartContext(t, http.MethodGet, "/cart", cart)

	if err := NewCartHandler().View(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Phase != string(domain.PhaseGuest) || resp.Count != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCartHandler_AddItem(t *testing.T) {
	cart := &stubCartStore{view: ports.CartView{
		Phase: domain.PhaseGuest,
		Items: domain.CartItems{"P1": 1},
	}}
	c, rec := cartContext(t, http.MethodPost, "/cart/items/P1", cart)
	c.SetParamNames("productId")
	c.SetParamValues("P1")

	if err := NewCartHandler().AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(cart.added) != 1 || cart.added[0] != "P1" {
		t.Fatalf("added = %v", cart.added)
	}
}

func TestCartHandler_AddItem_PropagatesDomainError(t *testing.T) {
	cart := &stubCartStore{addErr: domain.ErrProductNotFound}
	c, _ := cartContext(t, http.MethodPost, "/cart/items/NOPE", cart)
	c.SetParamNames("productId")
	c.SetParamValues("NOPE")

	err := NewCartHandler().AddItem(c)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err != domain.ErrProductNotFound {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestCartHandler_RemoveItem(t *testing.T) {
	cart := &stubCartStore{view: ports.CartView{Phase: domain.PhaseGuest, Items: domain.CartItems{}}}
	c, rec := cartContext(t, http.MethodDelete, "/cart/items/P1", cart)
	c.SetParamNames("productId")
	c.SetParamValues("P1")

	if err := NewCartHandler().RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(cart.removed) != 1 || cart.removed[0] != "P1" {
		t.Fatalf("removed = %v", cart.removed)
	}
}

func TestCartHandler_Summary(t *testing.T) {
	cart := &stubCartStore{
		view:  ports.CartView{Phase: domain.PhaseAuthenticated, Items: domain.CartItems{"P1": 2}},
		total: decimal.NewFromInt(250),
	}
	c, rec := cartContext(t, http.MethodGet, "/cart/summary", cart)

	if err := NewCartHandler().Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp cartSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != "250.00" {
		t.Fatalf("total = %q, want 250.00", resp.Total)
	}
}

func TestCheckoutHandler_Sync(t *testing.T) {
	cart := &stubCartStore{view: ports.CartView{
		Phase: domain.PhaseAuthenticated,
		Items: domain.CartItems{"P1": 1},
	}}
	c, rec := cartContext(t, http.MethodPost, "/checkout/sync", cart)

	if err := NewCheckoutHandler().Sync(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !cart.synced {
		t.Fatal("expected SyncForCheckout to be called")
	}
}

func TestCheckoutHandler_Sync_GuestRejected(t *testing.T) {
	cart := &stubCartStore{syncErr: domain.ErrNotAuthenticated}
	c, _ := cartContext(t, http.MethodPost, "/checkout/sync", cart)

	if err := NewCheckoutHandler().Sync(c); err != domain.ErrNotAuthenticated {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}
