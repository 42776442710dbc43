package catalog

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry. Price is in minor currency units.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Interface is the read side of the product catalog consumed by the
// cart session and the API layer. Cart lines referencing products that
// no longer resolve are tolerated in storage and filtered at read time.
type Interface interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
}

// AdminInterface adds the write operations exposed to storefront
// admins.
type AdminInterface interface {
	Interface
	PutProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// MemoryCatalog is a mutex-guarded in-memory catalog with the admin
// write operations used by the API layer.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*Product
	order    []string
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{products: make(map[string]*Product)}
}

// GetProduct returns the product for id or ErrProductNotFound.
func (c *MemoryCatalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

// ListProducts returns all products in insertion order.
func (c *MemoryCatalog) ListProducts(ctx context.Context) ([]*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]*Product, 0, len(c.order))
	for _, id := range c.order {
		copied := *c.products[id]
		products = append(products, &copied)
	}
	return products, nil
}

// PutProduct creates or updates a product.
func (c *MemoryCatalog) PutProduct(ctx context.Context, p *Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if existing, ok := c.products[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
		c.order = append(c.order, p.ID)
	}
	p.UpdatedAt = now

	copied := *p
	c.products[p.ID] = &copied
	return nil
}

// DeleteProduct removes a product. Existing cart lines referencing it
// are left in place and dropped from resolved views.
func (c *MemoryCatalog) DeleteProduct(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(c.products, id)
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
