package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

// InteractionsClient posts analytics events to the interaction sink. It is
// the synchronous delivery half; the queue dispatcher in front of it provides
// the fire-and-forget behaviour cart operations rely on.
type InteractionsClient struct {
	client *Client
}

func NewInteractionsClient(client *Client) *InteractionsClient {
	return &InteractionsClient{client: client}
}

// Deliver posts a single event. Unlike the ports.InteractionSink fire-and-
// forget contract, delivery errors are returned so the dispatcher can log them.
func (c *InteractionsClient) Deliver(ctx context.Context, event ports.Interaction) error {
	if err := c.client.do(ctx, http.MethodPost, "/interactions", event, nil); err != nil {
		return fmt.Errorf("post interaction: %w", err)
	}
	return nil
}
