package upstream

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const defaultSnapshotTTL = time.Minute

// CatalogClient implements ports.Catalog against the product catalog service.
// The full snapshot is cached for a short TTL so totals and merges do not
// hammer GET /products; single-product lookups hit the snapshot first and
// fall back to GET /products/:id when the snapshot is stale or incomplete.
type CatalogClient struct {
	client *Client
	ttl    time.Duration

	mu        sync.Mutex
	snapshot  map[string]domain.Product
	fetchedAt time.Time
}

var _ ports.Catalog = (*CatalogClient)(nil)

// NewCatalogClient builds a catalog adapter. If ttl <= 0, defaultSnapshotTTL
// is used.
func NewCatalogClient(client *Client, ttl time.Duration) *CatalogClient {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &CatalogClient{client: client, ttl: ttl}
}

type productPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	NewPrice float64 `json:"new_price"`
	Image    string  `json:"image"`
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: decimal.NewFromFloat(p.NewPrice),
		Image: p.Image,
	}
}

func (c *CatalogClient) Snapshot(ctx context.Context) (map[string]domain.Product, error) {
	c.mu.Lock()
	if c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl {
		cached := cloneSnapshot(c.snapshot)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var payload []productPayload
	if err := c.client.do(ctx, http.MethodGet, "/products", nil, &payload); err != nil {
		// Serve a stale snapshot over no snapshot at all.
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.snapshot != nil {
			return cloneSnapshot(c.snapshot), nil
		}
		return nil, err
	}

	fresh := make(map[string]domain.Product, len(payload))
	for _, p := range payload {
		fresh[p.ID] = p.toDomain()
	}

	c.mu.Lock()
	c.snapshot = fresh
	c.fetchedAt = time.Now()
	cached := cloneSnapshot(fresh)
	c.mu.Unlock()
	return cached, nil
}

func (c *CatalogClient) Product(ctx context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	if c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl {
		if p, ok := c.snapshot[id]; ok {
			c.mu.Unlock()
			clone := p
			return &clone, nil
		}
	}
	c.mu.Unlock()

	var payload productPayload
	err := c.client.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &payload)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	if payload.ID == "" {
		return nil, domain.ErrProductNotFound
	}
	product := payload.toDomain()
	return &product, nil
}

func cloneSnapshot(in map[string]domain.Product) map[string]domain.Product {
	out := make(map[string]domain.Product, len(in))
	for id, p := range in {
		out[id] = p
	}
	return out
}
