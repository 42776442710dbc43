package store

import (
	"context"
	"errors"

	"github.com/example/gearshop/internal/domain/cart"
)

var (
	// ErrCartNotFound is returned by GetCart when no document exists
	// for the owner. Callers create the cart lazily on first add.
	ErrCartNotFound = errors.New("cart not found")

	// ErrVersionConflict is returned by PutCart when the stored
	// document's version no longer matches the version the caller read.
	// The caller re-reads and re-applies its mutation.
	ErrVersionConflict = errors.New("cart version conflict")
)

// CartStoreInterface is the persistence contract for server carts: one
// document per owner, read whole, replaced whole. PutCart is a
// conditional full replace keyed on cart.Version, so two concurrent
// read-modify-writes can never silently drop each other's lines.
type CartStoreInterface interface {
	GetCart(ctx context.Context, ownerID string) (*cart.Cart, error)
	PutCart(ctx context.Context, c *cart.Cart) error
}
