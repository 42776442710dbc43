package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gearshop/internal/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key", 15*time.Minute)
}

func okHandler(captured **auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := GetIdentity(r.Context()); ok {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken_Header(t *testing.T) {
	jwtService := newTestJWTService()
	mw := Auth(jwtService)

	token, _, err := jwtService.GenerateToken("user-123", "test@example.com", "customer")
	require.NoError(t, err)

	var captured *auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-123", captured.UserID)
	assert.Equal(t, "customer", captured.Role)
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	jwtService := newTestJWTService()
	mw := Auth(jwtService)

	token, _, err := jwtService.GenerateToken("user-456", "cookie@example.com", "admin")
	require.NoError(t, err)

	var captured *auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	mw(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-456", captured.UserID)
}

func TestAuth_NoToken(t *testing.T) {
	mw := Auth(newTestJWTService())

	var captured *auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	mw(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Nil(t, captured)
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(newTestJWTService())

	var captured *auth.Identity
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	mw(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireRole(t *testing.T) {
	jwtService := newTestJWTService()

	tests := []struct {
		name     string
		role     string
		required string
		want     int
	}{
		{"matching role", "admin", "admin", http.StatusOK},
		{"wrong role", "customer", "admin", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := jwtService.GenerateToken("user-123", "test@example.com", tt.role)
			require.NoError(t, err)

			var captured *auth.Identity
			handler := Auth(jwtService)(RequireRole(tt.required)(okHandler(&captured)))

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	var captured *auth.Identity
	handler := RequireRole("admin")(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
