package auth

import (
	"errors"
	"testing"

	"garland/internal/config"
	"garland/internal/services"
)

func newProvider() *TokenProvider {
	cfg := config.Default()
	cfg.Auth.AdminToken = "admin-secret"
	cfg.Auth.Tokens = map[string]string{
		"token-priya": "user-priya",
		"token-arjun": "user-arjun",
		"  ":          "ignored",
	}
	return NewTokenProvider(&cfg)
}

func TestAuthenticateKnownToken(t *testing.T) {
	provider := newProvider()

	userID, err := provider.Authenticate("token-priya")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if userID != "user-priya" {
		t.Fatalf("expected user-priya, got %q", userID)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	provider := newProvider()

	_, err := provider.Authenticate("nope")
	if err == nil {
		t.Fatal("expected error for unknown token")
	}
	if !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("expected not-authenticated marker, got %v", err)
	}
}

func TestAuthenticateEmptyToken(t *testing.T) {
	provider := newProvider()

	if _, err := provider.Authenticate("  "); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("expected not-authenticated marker, got %v", err)
	}
}

func TestAdminToken(t *testing.T) {
	provider := newProvider()

	if !provider.IsAdmin("admin-secret") {
		t.Fatal("expected admin token to be recognized")
	}
	if provider.IsAdmin("token-priya") {
		t.Fatal("user token must not grant admin")
	}

	userID, err := provider.Authenticate("admin-secret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if userID != "admin" {
		t.Fatalf("expected admin identity, got %q", userID)
	}
}

func TestEmptyAdminTokenNeverMatches(t *testing.T) {
	cfg := config.Default()
	provider := NewTokenProvider(&cfg)

	if provider.IsAdmin("") {
		t.Fatal("empty admin token must not grant admin")
	}
}
