package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/example/gearshop/internal/domain/cart"
)

const (
	TypeCartMerged       = "CartMerged"
	TypeContactRequested = "ContactRequested"
)

// Envelope wraps every published event with identity and timing.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// CartMerged is published after a guest cart has been folded into a
// server cart at login. GuestLines carries what the guest brought so
// consumers can tell restored items apart from the rest of the cart.
type CartMerged struct {
	OwnerID     string      `json:"owner_id"`
	GuestLines  []cart.Line `json:"guest_lines"`
	MergedLines []cart.Line `json:"merged_lines"`
}

// ContactRequested is published when a visitor submits the contact
// form; the notifier turns it into an email.
type ContactRequested struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Publisher delivers events to downstream consumers. Publishing is
// best-effort from the caller's point of view; a failed publish never
// fails the originating request.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, data any) error
}

// Wrap builds an envelope around event data.
func Wrap(eventType string, data any) (*Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}, nil
}

// NopPublisher drops all events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, key, eventType string, data any) error {
	return nil
}
