package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// CartClient implements ports.CartClient against the remote cart service.
// Prices cross the wire as plain numbers, decimals are reconstructed on read.
type CartClient struct {
	client *Client
}

var _ ports.CartClient = (*CartClient)(nil)

func NewCartClient(client *Client) *CartClient {
	return &CartClient{client: client}
}

type cartItemPayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type cartResponse struct {
	Items []cartItemPayload `json:"items"`
}

type quantityPayload struct {
	Quantity int `json:"quantity"`
}

type syncPayload struct {
	FrontendCart map[string]int `json:"frontendCart"`
}

func (c *CartClient) Fetch(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var resp cartResponse
	if err := c.client.do(ctx, http.MethodGet, c.cartPath(userID), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(resp.Items))
	for _, item := range resp.Items {
		lines = append(lines, domain.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     decimal.NewFromFloat(item.Price),
		})
	}
	return lines, nil
}

func (c *CartClient) AddItem(ctx context.Context, userID string, line domain.CartLine) error {
	payload := cartItemPayload{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		Price:     line.Price.InexactFloat64(),
	}
	if err := c.client.do(ctx, http.MethodPost, c.cartPath(userID)+"/items", payload, nil); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (c *CartClient) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	path := c.cartPath(userID) + "/items/" + url.PathEscape(productID)
	if err := c.client.do(ctx, http.MethodPatch, path, quantityPayload{Quantity: quantity}, nil); err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (c *CartClient) RemoveItem(ctx context.Context, userID, productID string) error {
	path := c.cartPath(userID) + "/items/" + url.PathEscape(productID)
	if err := c.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (c *CartClient) Sync(ctx context.Context, userID string, items domain.CartItems) error {
	if err := c.client.do(ctx, http.MethodPost, c.cartPath(userID)+"/sync", syncPayload{FrontendCart: items}, nil); err != nil {
		return fmt.Errorf("sync cart: %w", err)
	}
	return nil
}

func (c *CartClient) cartPath(userID string) string {
	return "/cart/" + url.PathEscape(userID)
}
