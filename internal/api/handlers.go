package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/gearshop/internal/api/middleware"
	"github.com/example/gearshop/internal/catalog"
	"github.com/example/gearshop/internal/domain/cart"
	"github.com/example/gearshop/internal/events"
	"github.com/example/gearshop/internal/infrastructure/store"
	"github.com/example/gearshop/internal/session"
)

// Handlers serves the catalog, server-cart, and contact endpoints.
type Handlers struct {
	catalog catalog.AdminInterface
	carts   store.CartStoreInterface
	events  events.Publisher
}

func NewHandlers(cat catalog.AdminInterface, carts store.CartStoreInterface, publisher events.Publisher) *Handlers {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handlers{catalog: cat, carts: carts, events: publisher}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p.ID == "" || p.Name == "" {
		respondJSONError(w, "id and name are required", http.StatusBadRequest)
		return
	}

	if err := h.catalog.PutProduct(r.Context(), &p); err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.catalog.PutProduct(r.Context(), &p); err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	err := h.catalog.DeleteProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondJSONError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Cart Handlers
//
// These serve the authenticated server cart. Guest carts live in
// client-local storage and never touch these endpoints; the client
// submits its guest lines once, with the login request.

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	c, err := h.carts.GetCart(r.Context(), ownerID)
	if errors.Is(err, store.ErrCartNotFound) {
		// Lazy creation: no document until the first add.
		respondJSON(w, http.StatusOK, session.View{Lines: []session.ResolvedLine{}})
		return
	}
	if err != nil {
		respondJSONError(w, "failed to load cart", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, session.Resolve(r.Context(), h.catalog, c.Lines))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	h.updateCart(w, r, ownerID, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.AddLine(lines, req.ProductID, req.Quantity)
	})
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Quantity zero is not an implicit remove; DELETE is.
	if req.Quantity < 1 {
		respondJSONError(w, cart.ErrInvalidQuantity.Error(), http.StatusBadRequest)
		return
	}

	h.updateCart(w, r, ownerID, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.SetLine(lines, productID, req.Quantity)
	})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	h.updateCart(w, r, ownerID, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.RemoveLine(lines, productID), nil
	})
}

// updateCart runs one read-modify-write against the caller's cart and
// responds with the freshly resolved view.
func (h *Handlers) updateCart(w http.ResponseWriter, r *http.Request, ownerID string, op func([]cart.Line) ([]cart.Line, error)) {
	c, err := store.UpdateCart(r.Context(), h.carts, ownerID, op)
	if err != nil {
		respondCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session.Resolve(r.Context(), h.catalog, c.Lines))
}

// Contact Handler

func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	var req events.ContactRequested
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Message == "" {
		respondJSONError(w, "email and message are required", http.StatusBadRequest)
		return
	}

	if err := h.events.Publish(r.Context(), req.Email, events.TypeContactRequested, req); err != nil {
		log.Printf("[API] Failed to publish contact request from %s: %v", req.Email, err)
		respondJSONError(w, "failed to submit contact request", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"message": "contact request received"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidProduct):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, "cart operation failed", http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
