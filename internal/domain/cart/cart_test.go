package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// AddLine Tests
// ============================================

func TestAddLine_NewProduct(t *testing.T) {
	lines, err := AddLine(nil, "prod-1", 2)

	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 2}}, lines)
}

func TestAddLine_ExistingProductIsAdditive(t *testing.T) {
	lines, err := AddLine(nil, "prod-1", 1)
	require.NoError(t, err)

	lines, err = AddLine(lines, "prod-1", 2)

	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 3}}, lines)
}

func TestAddLine_PreservesOrder(t *testing.T) {
	lines, err := AddLine(nil, "prod-1", 1)
	require.NoError(t, err)
	lines, err = AddLine(lines, "prod-2", 1)
	require.NoError(t, err)
	lines, err = AddLine(lines, "prod-1", 1)
	require.NoError(t, err)

	assert.Equal(t, []Line{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	}, lines)
}

func TestAddLine_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantErr   error
	}{
		{"zero quantity", "prod-1", 0, ErrInvalidQuantity},
		{"negative quantity", "prod-1", -1, ErrInvalidQuantity},
		{"empty product ID", "", 1, ErrInvalidProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []Line{{ProductID: "prod-9", Quantity: 5}}
			got, err := AddLine(lines, tt.productID, tt.quantity)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, lines, got)
		})
	}
}

// ============================================
// SetLine Tests
// ============================================

func TestSetLine_ReplacesQuantity(t *testing.T) {
	lines, err := AddLine(nil, "prod-1", 3)
	require.NoError(t, err)

	lines, err = SetLine(lines, "prod-1", 1)

	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 1}}, lines)
}

func TestSetLine_ZeroQuantityRejected(t *testing.T) {
	lines := []Line{{ProductID: "prod-1", Quantity: 3}}

	got, err := SetLine(lines, "prod-1", 0)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	// The existing line is left unchanged.
	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 3}}, got)
}

func TestSetLine_AbsentProductAppends(t *testing.T) {
	lines, err := SetLine(nil, "prod-1", 2)

	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 2}}, lines)
}

// ============================================
// RemoveLine Tests
// ============================================

func TestRemoveLine_Present(t *testing.T) {
	lines := []Line{
		{ProductID: "prod-1", Quantity: 1},
		{ProductID: "prod-2", Quantity: 2},
	}

	lines = RemoveLine(lines, "prod-1")

	assert.Equal(t, []Line{{ProductID: "prod-2", Quantity: 2}}, lines)
}

func TestRemoveLine_AbsentIsNoop(t *testing.T) {
	lines := []Line{{ProductID: "prod-1", Quantity: 1}}

	lines = RemoveLine(lines, "prod-9")

	assert.Equal(t, []Line{{ProductID: "prod-1", Quantity: 1}}, lines)
}

// ============================================
// Merge Tests
// ============================================

func TestMerge_AddsOverlappingQuantities(t *testing.T) {
	server := []Line{
		{ProductID: "prod-a", Quantity: 3},
		{ProductID: "prod-b", Quantity: 1},
	}
	guest := []Line{{ProductID: "prod-a", Quantity: 2}}

	merged := Merge(server, guest)

	assert.Equal(t, []Line{
		{ProductID: "prod-a", Quantity: 5},
		{ProductID: "prod-b", Quantity: 1},
	}, merged)
}

func TestMerge_AppendsGuestOnlyLines(t *testing.T) {
	server := []Line{{ProductID: "prod-a", Quantity: 1}}
	guest := []Line{
		{ProductID: "prod-b", Quantity: 2},
		{ProductID: "prod-c", Quantity: 3},
	}

	merged := Merge(server, guest)

	assert.Equal(t, []Line{
		{ProductID: "prod-a", Quantity: 1},
		{ProductID: "prod-b", Quantity: 2},
		{ProductID: "prod-c", Quantity: 3},
	}, merged)
}

func TestMerge_EmptyServer(t *testing.T) {
	guest := []Line{{ProductID: "prod-a", Quantity: 2}}

	merged := Merge(nil, guest)

	assert.Equal(t, guest, merged)
}

func TestMerge_EmptyGuest(t *testing.T) {
	server := []Line{{ProductID: "prod-a", Quantity: 2}}

	merged := Merge(server, nil)

	assert.Equal(t, server, merged)
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	server := []Line{{ProductID: "prod-a", Quantity: 3}}
	guest := []Line{{ProductID: "prod-a", Quantity: 2}}

	_ = Merge(server, guest)

	assert.Equal(t, 3, server[0].Quantity)
	assert.Equal(t, 2, guest[0].Quantity)
}

func TestMerge_Deterministic(t *testing.T) {
	server := []Line{{ProductID: "prod-a", Quantity: 3}}
	guest := []Line{
		{ProductID: "prod-a", Quantity: 2},
		{ProductID: "prod-b", Quantity: 1},
	}

	first := Merge(server, guest)
	second := Merge(server, guest)

	assert.Equal(t, first, second)
}

// ============================================
// Cart Tests
// ============================================

func TestCart_Line(t *testing.T) {
	c := New("user-123")
	var err error
	c.Lines, err = AddLine(c.Lines, "prod-1", 2)
	require.NoError(t, err)

	line, ok := c.Line("prod-1")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	_, ok = c.Line("prod-9")
	assert.False(t, ok)
}
