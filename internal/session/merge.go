package session

import (
	"context"
	"fmt"
	"log"

	"github.com/example/gearshop/internal/domain/cart"
	"github.com/example/gearshop/internal/events"
	"github.com/example/gearshop/internal/infrastructure/store"
)

// Login transitions the session from guest to authenticated, folding
// the guest cart into the server cart exactly once.
//
// The guest entry in local storage is cleared only after the persist
// confirms. A failure anywhere earlier leaves local storage untouched
// and the session a guest, and because the merge itself is a pure
// function of (server lines, guest lines) a retry on the next login
// attempt produces the same merged cart without double counting.
//
// The session mutex is held for the whole transition, so the merge
// completes (or fails atomically) before any other mutation is
// dispatched.
func (s *Session) Login(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.verifier.Verify(token)
	if err != nil {
		return err
	}
	if s.ownerID != "" {
		if s.ownerID != identity.UserID {
			return fmt.Errorf("%w: session already bound to another user", ErrOperationFailed)
		}
		return nil
	}

	guestLines, err := s.guest.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}

	if len(guestLines) > 0 {
		merged, err := s.mergeInto(ctx, identity.UserID, guestLines)
		if err != nil {
			return err
		}
		if err := s.guest.Clear(); err != nil {
			// The server cart now holds the merged lines; a stale
			// local entry must not survive to be merged again, so the
			// failure is surfaced instead of swallowed. The session
			// still switches because the merge itself committed.
			s.ownerID = identity.UserID
			s.lines = merged
			return fmt.Errorf("%w: failed to clear guest cart: %w", ErrOperationFailed, err)
		}

		s.ownerID = identity.UserID
		s.lines = merged
		s.publishMerged(ctx, identity.UserID, guestLines, merged)
		return nil
	}

	// Nothing to merge: switch the backing store and pick up whatever
	// the server already has.
	s.ownerID = identity.UserID
	if err := s.reloadServer(ctx); err != nil {
		s.ownerID = ""
		s.lines = guestLines
		return err
	}
	return nil
}

// mergeInto folds guest lines into the owner's server cart and persists
// the result as a single conditional replace. A concurrent write to the
// same document triggers a re-read and re-merge; the guest side is
// unchanged across attempts so the result stays deterministic.
func (s *Session) mergeInto(ctx context.Context, ownerID string, guestLines []cart.Line) ([]cart.Line, error) {
	c, err := store.UpdateCart(ctx, s.carts, ownerID, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.Merge(lines, guestLines), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	return c.Lines, nil
}

func (s *Session) publishMerged(ctx context.Context, ownerID string, guestLines, mergedLines []cart.Line) {
	err := s.events.Publish(ctx, ownerID, events.TypeCartMerged, events.CartMerged{
		OwnerID:     ownerID,
		GuestLines:  guestLines,
		MergedLines: mergedLines,
	})
	if err != nil {
		log.Printf("[Session] Failed to publish CartMerged for %s: %v", ownerID, err)
	}
}
