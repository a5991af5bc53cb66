package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Sign(Identity{UserID: "u-1", Name: "Priya", Email: "priya@example.org"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	id, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != "u-1" || id.Name != "Priya" || id.Email != "priya@example.org" {
		t.Errorf("identity round trip mismatch: %+v", id)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := signer.Sign(Identity{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTTL(t *testing.T) {
	if got := NewTokenManager("test-secret", 2*time.Hour).TTL(); got != 2*time.Hour {
		t.Errorf("TTL() = %v, want 2h", got)
	}
	// non-positive lifetimes fall back to the default
	if got := NewTokenManager("test-secret", 0).TTL(); got != 24*time.Hour {
		t.Errorf("TTL() with zero lifetime = %v, want 24h", got)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	m.ttl = -time.Minute

	token, err := m.Sign(Identity{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
