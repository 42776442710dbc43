package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/gearshop/internal/api/middleware"
	"github.com/example/gearshop/internal/auth"
	"github.com/example/gearshop/internal/domain/cart"
	"github.com/example/gearshop/internal/events"
	"github.com/example/gearshop/internal/infrastructure/store"
	"github.com/example/gearshop/internal/user"
)

// AuthHandlers handles registration, login, and the merge of the
// guest cart submitted with a login request.
type AuthHandlers struct {
	users  user.StoreInterface
	jwt    *auth.JWTService
	carts  store.CartStoreInterface
	events events.Publisher
}

func NewAuthHandlers(users user.StoreInterface, jwtService *auth.JWTService, carts store.CartStoreInterface, publisher events.Publisher) *AuthHandlers {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuthHandlers{users: users, jwt: jwtService, carts: carts, events: publisher}
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Guest    []cart.Line `json:"guest_cart,omitempty"`
}

// LoginRequest is the login request body. Guest carries the lines the
// client accumulated before authenticating; the client keeps them in
// local storage until the response confirms the merge was persisted.
type LoginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Guest    []cart.Line `json:"guest_cart,omitempty"`
}

// AuthResponse is returned by Register and Login. CartMerged tells the
// client whether its guest lines were folded into the server cart and
// local storage can be cleared.
type AuthResponse struct {
	User       UserResponse `json:"user"`
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expires_at"`
	CartMerged bool         `json:"cart_merged"`
}

// UserResponse is the user shape exposed in responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles user registration.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		respondJSONError(w, "email is required", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondJSONError(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	newUser := &user.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         "customer",
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(r.Context(), newUser); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			respondJSONError(w, "email already registered", http.StatusConflict)
			return
		}
		respondJSONError(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	h.respondAuthenticated(w, r, newUser, req.Guest, http.StatusCreated)
}

// Login handles user login. If the request carries guest cart lines
// they are merged into the server cart before the response is written,
// so a 2xx status is the client's signal to clear local storage.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		respondJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		respondJSONError(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		respondJSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	h.respondAuthenticated(w, r, u, req.Guest, http.StatusOK)
}

// Logout clears the auth cookie. The client clears its own guest
// storage; the server cart is left untouched for the next login.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	respondJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// Me returns the current authenticated user.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), identity.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		respondJSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondJSONError(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// Helper methods

// respondAuthenticated merges any submitted guest lines, then issues
// the token. Merge failures fail the whole request: the client must
// not clear its guest cart unless the merge is durable.
func (h *AuthHandlers) respondAuthenticated(w http.ResponseWriter, r *http.Request, u *user.User, guestLines []cart.Line, status int) {
	merged := false
	if len(guestLines) > 0 {
		mergedLines, err := h.mergeGuestCart(r, u.ID, guestLines)
		if err != nil {
			log.Printf("[API] Failed to merge guest cart for %s: %v", u.ID, err)
			respondJSONError(w, "failed to merge guest cart", http.StatusInternalServerError)
			return
		}
		merged = true
		h.publishMerged(r, u.ID, guestLines, mergedLines)
	}

	token, expiry, err := h.jwt.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		respondJSONError(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, status, AuthResponse{
		User:       toUserResponse(u),
		Token:      token,
		ExpiresAt:  expiry,
		CartMerged: merged,
	})
}

func (h *AuthHandlers) mergeGuestCart(r *http.Request, ownerID string, guestLines []cart.Line) ([]cart.Line, error) {
	c, err := store.UpdateCart(r.Context(), h.carts, ownerID, func(lines []cart.Line) ([]cart.Line, error) {
		return cart.Merge(lines, guestLines), nil
	})
	if err != nil {
		return nil, err
	}
	return c.Lines, nil
}

func (h *AuthHandlers) publishMerged(r *http.Request, ownerID string, guestLines, mergedLines []cart.Line) {
	event := events.CartMerged{
		OwnerID:     ownerID,
		GuestLines:  guestLines,
		MergedLines: mergedLines,
	}
	if err := h.events.Publish(r.Context(), ownerID, events.TypeCartMerged, event); err != nil {
		log.Printf("[API] Failed to publish cart merged event for %s: %v", ownerID, err)
	}
}
