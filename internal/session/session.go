package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/gearshop/internal/auth"
	"github.com/example/gearshop/internal/catalog"
	"github.com/example/gearshop/internal/domain/cart"
	"github.com/example/gearshop/internal/events"
	"github.com/example/gearshop/internal/infrastructure/localstore"
	"github.com/example/gearshop/internal/infrastructure/store"
)

// ErrOperationFailed wraps any persistence failure surfaced to the
// view. It is never retried automatically; the in-memory view keeps its
// last-known-good state.
var ErrOperationFailed = errors.New("cart operation failed")

// Verifier resolves a bearer token to an identity or
// auth.ErrUnauthenticated.
type Verifier interface {
	Verify(token string) (*auth.Identity, error)
}

// ResolvedLine is a cart line joined with live catalog data. It is a
// projection for display, never persisted.
type ResolvedLine struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal int             `json:"subtotal"`
}

// View is what the cart UI renders: one row per resolved line plus the
// computed total. Lines whose product no longer exists are dropped and
// contribute zero to the total.
type View struct {
	Lines []ResolvedLine `json:"lines"`
	Total int            `json:"total"`
}

// Session is the cart session owned by the application shell. It
// presents one mutation contract regardless of auth state, dispatching
// to the guest local store or the server cart store. The backing-store
// decision happens in exactly two places: construction and the login
// merge; individual operations never branch on identity themselves.
//
// All operations run under one mutex, which is also what guarantees the
// merge completes before any post-login mutation is dispatched.
type Session struct {
	mu       sync.Mutex
	verifier Verifier
	catalog  catalog.Interface
	carts    store.CartStoreInterface
	guest    localstore.Interface
	events   events.Publisher

	ownerID string      // empty while the session is a guest
	lines   []cart.Line // mirror of whichever store is authoritative
}

// Config carries the session collaborators. Events may be nil.
type Config struct {
	Verifier  Verifier
	Catalog   catalog.Interface
	CartStore store.CartStoreInterface
	Guest     localstore.Interface
	Events    events.Publisher
}

// New builds a guest session, restoring any guest cart left in local
// storage by a previous visit. Token, when non-empty and valid,
// resumes an already-authenticated session directly; no merge runs
// because the guest-to-user transition happened in an earlier session.
func New(ctx context.Context, cfg Config, token string) (*Session, error) {
	s := &Session{
		verifier: cfg.Verifier,
		catalog:  cfg.Catalog,
		carts:    cfg.CartStore,
		guest:    cfg.Guest,
		events:   cfg.Events,
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}

	if identity, err := cfg.Verifier.Verify(token); err == nil {
		s.ownerID = identity.UserID
		if err := s.reloadServer(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}

	lines, err := cfg.Guest.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	s.lines = lines
	return s, nil
}

// Authenticated reports whether the session is backed by the server
// cart store.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID != ""
}

// AddItem adds quantity of a product to the cart. Adding a product
// already in the cart increments its line, it never replaces it.
func (s *Session) AddItem(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.AddLine(lines, productID, quantity)
	})
}

// SetQuantity replaces the stored quantity for a product. Quantities
// below one are rejected with cart.ErrInvalidQuantity before any store
// access; callers must use RemoveItem to delete a line.
func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	return s.mutate(ctx, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.SetLine(lines, productID, quantity)
	})
}

// RemoveItem deletes the line for a product; removing an absent line
// is a no-op.
func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.RemoveLine(lines, productID), nil
	})
}

// GetCart returns the current cart joined against the catalog. Lines
// whose product fails to resolve are excluded and contribute zero to
// the total; stale references are expected over time and never an
// error.
func (s *Session) GetCart(ctx context.Context) View {
	s.mu.Lock()
	lines := make([]cart.Line, len(s.lines))
	copy(lines, s.lines)
	s.mu.Unlock()

	return Resolve(ctx, s.catalog, lines)
}

// Logout drops the authenticated backing store and starts a fresh,
// empty guest cart. The previous guest cart was consumed at login and
// does not come back.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = ""
	s.lines = nil
}

// mutate applies one line operation to whichever store is
// authoritative. The guest path mutates the local copy and rewrites
// local storage wholesale in the same step. The server path is a
// read-modify-write followed by a full reload, so the in-memory mirror
// never diverges from server state after a write.
func (s *Session) mutate(ctx context.Context, op func([]cart.Line) ([]cart.Line, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownerID == "" {
		return s.mutateGuest(op)
	}
	return s.mutateServer(ctx, op)
}

func (s *Session) mutateGuest(op func([]cart.Line) ([]cart.Line, error)) error {
	working := make([]cart.Line, len(s.lines))
	copy(working, s.lines)

	updated, err := op(working)
	if err != nil {
		return err
	}
	if err := s.guest.Save(updated); err != nil {
		return fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	s.lines = updated
	return nil
}

func (s *Session) mutateServer(ctx context.Context, op func([]cart.Line) ([]cart.Line, error)) error {
	if _, err := store.UpdateCart(ctx, s.carts, s.ownerID, op); err != nil {
		return wrapStoreErr(err)
	}
	return s.reloadServer(ctx)
}

// wrapStoreErr surfaces persistence failures as ErrOperationFailed
// while letting domain validation errors pass through untouched.
func wrapStoreErr(err error) error {
	if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrInvalidProduct) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrOperationFailed, err)
}

// reloadServer refreshes the in-memory mirror from the server store.
// A missing document is an empty cart, not an error.
func (s *Session) reloadServer(ctx context.Context) error {
	c, err := s.carts.GetCart(ctx, s.ownerID)
	if errors.Is(err, store.ErrCartNotFound) {
		s.lines = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	s.lines = c.Lines
	return nil
}

// Resolve joins cart lines against the catalog. Unresolvable lines are
// dropped from the view.
func Resolve(ctx context.Context, cat catalog.Interface, lines []cart.Line) View {
	view := View{Lines: []ResolvedLine{}}
	for _, l := range lines {
		p, err := cat.GetProduct(ctx, l.ProductID)
		if err != nil {
			if !errors.Is(err, catalog.ErrProductNotFound) {
				log.Printf("[Session] Failed to resolve product %s: %v", l.ProductID, err)
			}
			continue
		}
		subtotal := p.Price * l.Quantity
		view.Lines = append(view.Lines, ResolvedLine{
			Product:  *p,
			Quantity: l.Quantity,
			Subtotal: subtotal,
		})
		view.Total += subtotal
	}
	return view
}
