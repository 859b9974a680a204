package testsupport

import (
	"context"
	"testing"

	"garland/internal/catalog"
	"garland/internal/config"
	"garland/internal/invite"
)

// MustOpenStore opens an invite.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *invite.Store {
	t.Helper()

	store, err := invite.Open(cfg)
	if err != nil {
		t.Fatalf("invite.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenCatalog opens a seeded catalog store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.OpenStore(cfg)
	if err != nil {
		t.Fatalf("catalog.OpenStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	if _, err := catalog.Seed(context.Background(), store); err != nil {
		t.Fatalf("catalog.Seed: %v", err)
	}
	return store
}

// NewDraft creates a draft invite for tests using the provided store.
func NewDraft(t testing.TB, store *invite.Store, userID, templateID string, values map[string]string) *invite.Invite {
	t.Helper()

	inv, err := store.Create(context.Background(), userID, templateID, values, "")
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return inv
}
