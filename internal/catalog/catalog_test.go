package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalog_GetProduct_NotFound(t *testing.T) {
	c := NewMemoryCatalog()

	_, err := c.GetProduct(context.Background(), "prod-1")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryCatalog_PutThenGet(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-1", Name: "Angle Grinder", Price: 12900}))

	p, err := c.GetProduct(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Angle Grinder", p.Name)
	assert.Equal(t, 12900, p.Price)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestMemoryCatalog_UpdateKeepsCreatedAt(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-1", Name: "Angle Grinder", Price: 12900}))
	first, err := c.GetProduct(ctx, "prod-1")
	require.NoError(t, err)

	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-1", Name: "Angle Grinder XL", Price: 15900}))

	p, err := c.GetProduct(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Angle Grinder XL", p.Name)
	assert.Equal(t, first.CreatedAt, p.CreatedAt)
}

func TestMemoryCatalog_ListProducts_InsertionOrder(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-2", Name: "Welder"}))
	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-1", Name: "Grinder"}))

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "prod-2", products[0].ID)
	assert.Equal(t, "prod-1", products[1].ID)
}

func TestMemoryCatalog_DeleteProduct(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, c.PutProduct(ctx, &Product{ID: "prod-1", Name: "Grinder"}))
	require.NoError(t, c.DeleteProduct(ctx, "prod-1"))

	_, err := c.GetProduct(ctx, "prod-1")
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = c.DeleteProduct(ctx, "prod-1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
