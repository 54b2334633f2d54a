package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

type cartResponse struct {
	Phase string         `json:"phase"`
	Items map[string]int `json:"items"`
	Count int            `json:"count"`
}

type cartSummaryResponse struct {
	Phase string         `json:"phase"`
	Items map[string]int `json:"items"`
	Count int            `json:"count"`
	Total string         `json:"total"`
}

func toCartResponse(view ports.CartView, count int) cartResponse {
	items := view.Items
	if items == nil {
		items = domain.CartItems{}
	}
	return cartResponse{Phase: string(view.Phase), Items: items, Count: count}
}

// View returns the current cart snapshot.
//
// @Summary      View cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Router       /cart [get]
func (h *CartHandler) View(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(s.Cart.View(), s.Cart.TotalItemCount()))
}

// AddItem increments the given product's quantity by one.
//
// @Summary      Add one unit of a product
// @Tags         cart
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  cartResponse
// @Failure      404        {object}  map[string]string
// @Failure      502        {object}  map[string]string
// @Router       /cart/items/{productId} [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	productID := c.Param("productId")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product id")
	}

	view, err := s.Cart.AddItem(c.Request().Context(), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view, s.Cart.TotalItemCount()))
}

// RemoveItem decrements the given product's quantity by one; removing a
// product not in the cart is a no-op, not an error.
//
// @Summary      Remove one unit of a product
// @Tags         cart
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  cartResponse
// @Failure      502        {object}  map[string]string
// @Router       /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	productID := c.Param("productId")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product id")
	}

	view, err := s.Cart.RemoveItem(c.Request().Context(), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view, s.Cart.TotalItemCount()))
}

// Summary returns the cart with its total priced at current catalog prices.
//
// @Summary      Cart summary with total
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartSummaryResponse
// @Failure      502  {object}  map[string]string
// @Router       /cart/summary [get]
func (h *CartHandler) Summary(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	total, err := s.Cart.TotalAmount(c.Request().Context())
	if err != nil {
		return err
	}
	view := s.Cart.View()
	items := view.Items
	if items == nil {
		items = domain.CartItems{}
	}
	return c.JSON(http.StatusOK, cartSummaryResponse{
		Phase: string(view.Phase),
		Items: items,
		Count: s.Cart.TotalItemCount(),
		Total: total.StringFixed(2),
	})
}

// Refresh re-reads the authoritative cart, e.g. after order placement
// emptied the remote cart.
//
// @Summary      Refresh cart from its source of truth
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Failure      502  {object}  map[string]string
// @Router       /cart/refresh [post]
func (h *CartHandler) Refresh(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := s.Cart.Refresh(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(s.Cart.View(), s.Cart.TotalItemCount()))
}
