package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler {
	return &CheckoutHandler{}
}

type checkoutSyncResponse struct {
	Synced bool           `json:"synced"`
	Items  map[string]int `json:"items"`
}

// Sync bulk-reconciles the local cart with the remote cart so the order
// service sees exactly what the shopper sees. Must run before checkout hands
// off to payment.
//
// @Summary      Sync cart before checkout
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  checkoutSyncResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /checkout/sync [post]
func (h *CheckoutHandler) Sync(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	if err := s.Cart.SyncForCheckout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkoutSyncResponse{
		Synced: true,
		Items:  s.Cart.View().Items,
	})
}
