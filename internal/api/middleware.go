package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelter-training/maps-trainer/internal/auth"
)

// AuthMiddleware handles bearer-token authentication
type AuthMiddleware struct {
	tokens *auth.TokenManager
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the JWT from the Authorization header and attaches
// the caller's identity to the request context. Requests without a valid
// token get 401 unauthenticated.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "provide Authorization header with Bearer token")
			return
		}

		identity, err := m.tokens.Verify(token)
		if err != nil {
			slog.Warn("invalid token attempt", "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "unauthenticated", "the provided token is not valid")
			return
		}

		ctx := ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
