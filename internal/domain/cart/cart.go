package cart

import (
	"errors"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
)

// Line is one (product, quantity) entry in a cart. A cart holds at most
// one line per product ID; quantity is always positive.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the server-persisted cart document for one owner. Lines keep
// insertion order. Version is the optimistic-concurrency counter bumped
// by every successful store write; an empty Lines slice is a valid
// persisted state, not a tombstone.
type Cart struct {
	OwnerID   string    `json:"owner_id"`
	Lines     []Line    `json:"lines"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for the given owner. Carts are created
// lazily on first add; callers should not persist an empty cart just to
// reserve the document.
func New(ownerID string) *Cart {
	return &Cart{OwnerID: ownerID, Lines: []Line{}}
}

// Line returns the line for productID and whether it exists.
func (c *Cart) Line(productID string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// AddLine increments the quantity of an existing line for productID or
// appends a new line. Add semantics are always additive, never a
// replacement; every caller must preserve this.
func AddLine(lines []Line, productID string, quantity int) ([]Line, error) {
	if productID == "" {
		return lines, ErrInvalidProduct
	}
	if quantity < 1 {
		return lines, ErrInvalidQuantity
	}
	for i, l := range lines {
		if l.ProductID == productID {
			lines[i].Quantity += quantity
			return lines, nil
		}
	}
	return append(lines, Line{ProductID: productID, Quantity: quantity}), nil
}

// SetLine replaces the stored quantity for productID. Quantities below
// one are rejected; removing a line is RemoveLine's job, decrementing
// to zero is never an implicit remove.
func SetLine(lines []Line, productID string, quantity int) ([]Line, error) {
	if productID == "" {
		return lines, ErrInvalidProduct
	}
	if quantity < 1 {
		return lines, ErrInvalidQuantity
	}
	for i, l := range lines {
		if l.ProductID == productID {
			lines[i].Quantity = quantity
			return lines, nil
		}
	}
	return append(lines, Line{ProductID: productID, Quantity: quantity}), nil
}

// RemoveLine deletes the line for productID. Removing an absent line is
// a no-op, not an error.
func RemoveLine(lines []Line, productID string) []Line {
	for i, l := range lines {
		if l.ProductID == productID {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}

// Merge folds guest lines into server lines: quantities are added for
// products present on both sides, guest-only lines are appended in
// guest order. Neither input is modified and the result is
// deterministic, so a failed persist can be retried with the same
// inputs and produce the same merged cart.
func Merge(server, guest []Line) []Line {
	merged := make([]Line, len(server))
	copy(merged, server)
	for _, g := range guest {
		found := false
		for i, s := range merged {
			if s.ProductID == g.ProductID {
				merged[i].Quantity += g.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, g)
		}
	}
	return merged
}
