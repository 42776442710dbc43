package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/gearshop/internal/catalog"
	"github.com/example/gearshop/internal/email"
	"github.com/example/gearshop/internal/events"
	"github.com/example/gearshop/internal/user"
)

// Handler processes storefront events and sends the matching emails.
type Handler struct {
	emailService *email.Service
	users        user.StoreInterface
	catalog      catalog.Interface
	supportAddr  string
}

// NewHandler creates a new notification handler. supportAddr is the
// inbox contact requests are forwarded to.
func NewHandler(emailSvc *email.Service, users user.StoreInterface, cat catalog.Interface, supportAddr string) *Handler {
	return &Handler{
		emailService: emailSvc,
		users:        users,
		catalog:      cat,
		supportAddr:  supportAddr,
	}
}

// HandleEvent processes an event from Kafka.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var envelope events.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch envelope.Type {
	case events.TypeContactRequested:
		return h.handleContactRequested(envelope)
	case events.TypeCartMerged:
		return h.handleCartMerged(ctx, envelope)
	}

	return nil
}

func (h *Handler) handleContactRequested(envelope events.Envelope) error {
	var e events.ContactRequested
	if err := json.Unmarshal(envelope.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal ContactRequested event: %v", err)
		return err
	}

	if err := h.emailService.SendContactNotification(h.supportAddr, e.Name, e.Email, e.Message); err != nil {
		log.Printf("[Notifier] Failed to forward contact request from %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] Contact request from %s forwarded to %s", e.Email, h.supportAddr)
	return nil
}

func (h *Handler) handleCartMerged(ctx context.Context, envelope events.Envelope) error {
	var e events.CartMerged
	if err := json.Unmarshal(envelope.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal CartMerged event: %v", err)
		return err
	}

	u, err := h.users.GetByID(ctx, e.OwnerID)
	if err != nil {
		// The user may live in another store instance; skip, don't retry.
		log.Printf("[Notifier] Could not resolve user %s: %v", e.OwnerID, err)
		return nil
	}

	items := make([]email.CartItem, 0, len(e.GuestLines))
	for _, line := range e.GuestLines {
		name := line.ProductID
		if p, err := h.catalog.GetProduct(ctx, line.ProductID); err == nil {
			name = p.Name
		}
		items = append(items, email.CartItem{
			ProductID: line.ProductID,
			Name:      name,
			Quantity:  line.Quantity,
		})
	}

	if err := h.emailService.SendCartMergedReceipt(u.Email, items); err != nil {
		log.Printf("[Notifier] Failed to send cart merged receipt to %s: %v", u.Email, err)
		return err
	}

	log.Printf("[Notifier] Cart merged receipt sent to %s", u.Email)
	return nil
}
