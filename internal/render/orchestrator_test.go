package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"garland/internal/catalog"
	"garland/internal/invite"
	"garland/internal/services"
	"garland/internal/testsupport"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *invite.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	catalogStore := testsupport.MustOpenCatalog(t, cfg)
	catalogSvc := catalog.NewService(catalogStore, 5*time.Minute, nil)
	return NewOrchestrator(catalogSvc, store, nil), store
}

func completeValues() map[string]string {
	return map[string]string{
		"brideName":   "Aanya",
		"groomName":   "Dev",
		"weddingDate": "2026-11-21",
		"venue":       "The Oberoi Udaivilas",
		"message":     "Join us",
	}
}

func TestCreateInvite(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", map[string]string{"brideName": "Aanya"}, "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	if inv.Status != invite.StatusDraft {
		t.Fatalf("expected draft, got %s", inv.Status)
	}
	if inv.RenderPending() {
		t.Fatal("fresh draft must not be queued for render")
	}
}

func TestCreateInviteRequiresUser(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.CreateInvite(context.Background(), " ", "royal-rajasthani-wedding", nil, "")
	if !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("expected not-authenticated marker, got %v", err)
	}
}

func TestCreateInviteUnknownTemplate(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.CreateInvite(context.Background(), "user-1", "no-such-template", nil, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestCreateInviteRejectsUnknownFields(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.CreateInvite(context.Background(), "user-1", "royal-rajasthani-wedding", map[string]string{"hashtag": "#AanyaWedsDev"}, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "hashtag") {
		t.Fatalf("expected offending field in message, got %v", err)
	}
}

func TestUpdateInviteOwnershipReadsAsNotFound(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", nil, "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	_, err = orch.UpdateInvite(ctx, "user-2", inv.ID, completeValues(), "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker for foreign invite, got %v", err)
	}
}

func TestUpdateInviteResetsFailedToDraft(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", nil, "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	inv.SetFailed("farm down")
	if err := store.Update(ctx, inv); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	updated, err := orch.UpdateInvite(ctx, "user-1", inv.ID, completeValues(), "Kabira - Arijit Singh")
	if err != nil {
		t.Fatalf("UpdateInvite returned error: %v", err)
	}
	if updated.Status != invite.StatusDraft {
		t.Fatalf("expected draft after edit, got %s", updated.Status)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("expected cleared error, got %q", updated.ErrorMessage)
	}
	if updated.MusicChoice != "Kabira - Arijit Singh" {
		t.Fatalf("music choice not stored: %q", updated.MusicChoice)
	}
}

func TestUpdateInviteRejectsRendering(t *testing.T) {
	orch, store := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", completeValues(), "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	inv.Status = invite.StatusRendering
	if err := store.Update(ctx, inv); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	_, err = orch.UpdateInvite(ctx, "user-1", inv.ID, completeValues(), "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestRequestRenderQueuesCompleteDraft(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", completeValues(), "Din Shagna Da")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	queued, err := orch.RequestRender(ctx, "user-1", inv.ID)
	if err != nil {
		t.Fatalf("RequestRender returned error: %v", err)
	}
	if !queued.RenderPending() {
		t.Fatalf("expected queued draft, got %#v", queued)
	}
}

func TestRequestRenderNamesMissingFields(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	inv, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", map[string]string{"brideName": "Aanya"}, "")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	_, err = orch.RequestRender(ctx, "user-1", inv.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	for _, field := range []string{"groomName", "weddingDate"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected %s in error message, got %v", field, err)
		}
	}
}

func TestGetInviteNotFound(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.GetInvite(context.Background(), "user-1", "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestListInvitesScopedToUser(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	if _, err := orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", nil, ""); err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	if _, err := orch.CreateInvite(ctx, "user-2", "minimalist-modern", nil, ""); err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	invites, err := orch.ListInvites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListInvites returned error: %v", err)
	}
	if len(invites) != 1 || invites[0].UserID != "user-1" {
		t.Fatalf("unexpected list: %#v", invites)
	}
}
