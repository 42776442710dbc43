package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gearshop/internal/domain/cart"
)

// conflictingStore forces a number of version conflicts before
// delegating to the real store.
type conflictingStore struct {
	*MemoryCartStore
	conflicts int
}

func (s *conflictingStore) PutCart(ctx context.Context, c *cart.Cart) error {
	if s.conflicts > 0 {
		s.conflicts--
		return ErrVersionConflict
	}
	return s.MemoryCartStore.PutCart(ctx, c)
}

func TestUpdateCart_CreatesLazily(t *testing.T) {
	s := NewMemoryCartStore()

	c, err := UpdateCart(context.Background(), s, "user-123", func(lines []cart.Line) ([]cart.Line, error) {
		return cart.AddLine(lines, "prod-1", 2)
	})

	require.NoError(t, err)
	assert.Equal(t, 1, c.Version)
	assert.Equal(t, []cart.Line{{ProductID: "prod-1", Quantity: 2}}, c.Lines)
}

func TestUpdateCart_RetriesOnConflict(t *testing.T) {
	s := &conflictingStore{MemoryCartStore: NewMemoryCartStore(), conflicts: 2}

	calls := 0
	c, err := UpdateCart(context.Background(), s, "user-123", func(lines []cart.Line) ([]cart.Line, error) {
		calls++
		return cart.AddLine(lines, "prod-1", 1)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []cart.Line{{ProductID: "prod-1", Quantity: 1}}, c.Lines)
}

func TestUpdateCart_GivesUpAfterRetries(t *testing.T) {
	s := &conflictingStore{MemoryCartStore: NewMemoryCartStore(), conflicts: 100}

	_, err := UpdateCart(context.Background(), s, "user-123", func(lines []cart.Line) ([]cart.Line, error) {
		return lines, nil
	})

	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestUpdateCart_OpErrorAborts(t *testing.T) {
	s := NewMemoryCartStore()
	boom := errors.New("boom")

	_, err := UpdateCart(context.Background(), s, "user-123", func(lines []cart.Line) ([]cart.Line, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	_, getErr := s.GetCart(context.Background(), "user-123")
	assert.ErrorIs(t, getErr, ErrCartNotFound)
}
