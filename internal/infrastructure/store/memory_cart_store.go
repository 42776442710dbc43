package store

import (
	"context"
	"sync"
	"time"

	"github.com/example/gearshop/internal/domain/cart"
)

// MemoryCartStore is an in-memory cart store for development and tests.
// It enforces the same conditional-replace contract as the durable
// backends.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart // ownerID -> document
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]cart.Cart)}
}

// GetCart returns a copy of the owner's cart document.
func (s *MemoryCartStore) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	c := stored
	c.Lines = make([]cart.Line, len(stored.Lines))
	copy(c.Lines, stored.Lines)
	return &c, nil
}

// PutCart replaces the owner's document if c.Version matches the stored
// version (0 for a document that does not exist yet). On success the
// passed cart's Version and UpdatedAt are advanced to the stored values.
func (s *MemoryCartStore) PutCart(ctx context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.carts[c.OwnerID]
	if ok && stored.Version != c.Version {
		return ErrVersionConflict
	}
	if !ok && c.Version != 0 {
		return ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = time.Now()

	doc := *c
	doc.Lines = make([]cart.Line, len(c.Lines))
	copy(doc.Lines, c.Lines)
	s.carts[c.OwnerID] = doc
	return nil
}
