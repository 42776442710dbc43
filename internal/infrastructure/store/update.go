package store

import (
	"context"
	"errors"

	"github.com/example/gearshop/internal/domain/cart"
)

// updateRetries bounds the read-modify-write loop on version conflicts.
const updateRetries = 3

// UpdateCart applies op to the owner's cart under a read-modify-write
// with optimistic retry: a version conflict re-reads the document and
// re-applies op. A missing document is created lazily. Errors returned
// by op abort without retrying.
func UpdateCart(ctx context.Context, s CartStoreInterface, ownerID string, op func([]cart.Line) ([]cart.Line, error)) (*cart.Cart, error) {
	for attempt := 0; attempt < updateRetries; attempt++ {
		c, err := s.GetCart(ctx, ownerID)
		if errors.Is(err, ErrCartNotFound) {
			c = cart.New(ownerID)
		} else if err != nil {
			return nil, err
		}

		c.Lines, err = op(c.Lines)
		if err != nil {
			return nil, err
		}

		err = s.PutCart(ctx, c)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, ErrVersionConflict
}
