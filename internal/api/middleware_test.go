package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shelter-training/maps-trainer/internal/auth"
)

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("test-secret", time.Hour))
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	m := NewAuthMiddleware(auth.NewTokenManager("test-secret", time.Hour))
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Sign(auth.Identity{UserID: "u-1", Name: "Priya", Email: "priya@example.org"})
	if err != nil {
		t.Fatal(err)
	}

	m := NewAuthMiddleware(tokens)
	var got *auth.Identity
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.UserID != "u-1" {
		t.Errorf("identity not attached: %+v", got)
	}
}
