package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/gearshop/internal/domain/cart"
	"github.com/example/gearshop/internal/infrastructure/store"
)

// MockCartStore is a mock implementation of CartStoreInterface for testing
type MockCartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart

	// For tracking calls and injecting failures in tests
	GetCalls []string
	PutCalls []PutCall
	GetErr   error
	PutErr   error
}

// PutCall records the document passed to PutCart
type PutCall struct {
	OwnerID string
	Lines   []cart.Line
	Version int
}

// NewMockCartStore creates a new MockCartStore
func NewMockCartStore() *MockCartStore {
	return &MockCartStore{carts: make(map[string]cart.Cart)}
}

// Seed installs a cart document directly, bypassing version checks.
func (m *MockCartStore) Seed(ownerID string, lines []cart.Line) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := cart.Cart{OwnerID: ownerID, Version: 1, UpdatedAt: time.Now()}
	c.Lines = append(c.Lines, lines...)
	m.carts[ownerID] = c
}

// Stored returns the current document for an owner, if any.
func (m *MockCartStore) Stored(ownerID string) (cart.Cart, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[ownerID]
	return c, ok
}

// GetCart returns the stored cart or ErrCartNotFound.
func (m *MockCartStore) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, ownerID)

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	stored, ok := m.carts[ownerID]
	if !ok {
		return nil, store.ErrCartNotFound
	}
	c := stored
	c.Lines = make([]cart.Line, len(stored.Lines))
	copy(c.Lines, stored.Lines)
	return &c, nil
}

// PutCart replaces the stored cart under the same version contract as
// the real backends.
func (m *MockCartStore) PutCart(ctx context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]cart.Line, len(c.Lines))
	copy(lines, c.Lines)
	m.PutCalls = append(m.PutCalls, PutCall{OwnerID: c.OwnerID, Lines: lines, Version: c.Version})

	if m.PutErr != nil {
		return m.PutErr
	}

	stored, ok := m.carts[c.OwnerID]
	if ok && stored.Version != c.Version {
		return store.ErrVersionConflict
	}
	if !ok && c.Version != 0 {
		return store.ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = time.Now()
	doc := *c
	doc.Lines = lines
	m.carts[c.OwnerID] = doc
	return nil
}
