package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u := &User{ID: "user-1", Email: "Buyer@Example.com", Name: "Buyer", Role: "customer"}
	require.NoError(t, s.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := s.GetByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byEmail.ID)

	byID, err := s.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Buyer", byID.Name)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &User{ID: "user-1", Email: "buyer@example.com"}))

	err := s.Create(ctx, &User{ID: "user-2", Email: "BUYER@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetByID(ctx, "user-404")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
