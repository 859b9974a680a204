package render

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"garland/internal/catalog"
	"garland/internal/invite"
	"garland/internal/services"
	"garland/internal/services/renderer"
	"garland/internal/services/uploader"
	"garland/internal/testsupport"
)

type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	requests []renderer.Request
}

func (f *fakeRenderer) Render(ctx context.Context, req renderer.Request) (*renderer.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &renderer.Result{AssetID: "asset-" + req.InviteID}, nil
}

type fakeUploader struct {
	mu  sync.Mutex
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, req uploader.Request) (*uploader.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &uploader.Result{URL: "https://cdn.example.com/renders/" + req.InviteID + ".mp4"}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	started  []string
	rendered []string
	failed   []string
}

func (n *recordingNotifier) NotifyRenderStarted(_ context.Context, _, inviteID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, inviteID)
	return nil
}

func (n *recordingNotifier) NotifyRendered(_ context.Context, _, inviteID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rendered = append(n.rendered, inviteID)
	return nil
}

func (n *recordingNotifier) NotifyRenderFailed(_ context.Context, _, inviteID, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, inviteID)
	return nil
}

func (n *recordingNotifier) NotifyCatalogSeeded(context.Context, int) error { return nil }
func (n *recordingNotifier) NotifyError(context.Context, error, string) error {
	return nil
}
func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

type managerHarness struct {
	manager  *Manager
	orch     *Orchestrator
	store    *invite.Store
	renderer *fakeRenderer
	uploader *fakeUploader
	notifier *recordingNotifier
}

func newManagerHarness(t *testing.T) *managerHarness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	catalogStore := testsupport.MustOpenCatalog(t, cfg)
	catalogSvc := catalog.NewService(catalogStore, 5*time.Minute, nil)

	rend := &fakeRenderer{}
	up := &fakeUploader{}
	notif := &recordingNotifier{}

	return &managerHarness{
		manager:  NewManager(cfg, store, catalogSvc, rend, up, notif, nil),
		orch:     NewOrchestrator(catalogSvc, store, nil),
		store:    store,
		renderer: rend,
		uploader: up,
		notifier: notif,
	}
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}

func (h *managerHarness) queuedInvite(t *testing.T) *invite.Invite {
	t.Helper()
	ctx := context.Background()
	inv, err := h.orch.CreateInvite(ctx, "user-1", "royal-rajasthani-wedding", completeValues(), "Din Shagna Da")
	if err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}
	if _, err := h.orch.RequestRender(ctx, "user-1", inv.ID); err != nil {
		t.Fatalf("RequestRender returned error: %v", err)
	}
	return inv
}

func (h *managerHarness) waitTerminal(t *testing.T, inviteID string) *invite.Invite {
	t.Helper()
	var final *invite.Invite
	waitFor(t, 15*time.Second, func() bool {
		inv, err := h.store.GetByID(context.Background(), inviteID)
		if err != nil || inv == nil {
			return false
		}
		if inv.Status.IsTerminal() {
			final = inv
			return true
		}
		return false
	})
	return final
}

func TestManagerRendersQueuedInvite(t *testing.T) {
	h := newManagerHarness(t)
	inv := h.queuedInvite(t)

	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer h.manager.Stop()

	final := h.waitTerminal(t, inv.ID)
	if final.Status != invite.StatusRendered {
		t.Fatalf("expected rendered, got %s (%s)", final.Status, final.ErrorMessage)
	}
	if final.VideoURL == "" {
		t.Fatal("rendered invite must carry a video url")
	}
	if final.ErrorMessage != "" {
		t.Fatalf("rendered invite must carry no error, got %q", final.ErrorMessage)
	}

	h.renderer.mu.Lock()
	defer h.renderer.mu.Unlock()
	if len(h.renderer.requests) != 1 {
		t.Fatalf("expected 1 render request, got %d", len(h.renderer.requests))
	}
	req := h.renderer.requests[0]
	if req.CompositionID != "RoyalRajasthaniWedding" {
		t.Fatalf("unexpected composition %q", req.CompositionID)
	}
	if req.MusicChoice != "Din Shagna Da" {
		t.Fatalf("unexpected music choice %q", req.MusicChoice)
	}

	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	if len(h.notifier.rendered) != 1 {
		t.Fatalf("expected rendered notification, got %#v", h.notifier.rendered)
	}
}

func TestManagerRecordsRenderFailure(t *testing.T) {
	h := newManagerHarness(t)
	h.renderer.err = services.Wrap(services.ErrRender, "renderer", "render", "farm exploded", nil)
	inv := h.queuedInvite(t)

	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer h.manager.Stop()

	final := h.waitTerminal(t, inv.ID)
	if final.Status != invite.StatusError {
		t.Fatalf("expected error status, got %s", final.Status)
	}
	if final.ErrorMessage == "" {
		t.Fatal("failed invite must carry an error message")
	}
	if final.VideoURL != "" {
		t.Fatalf("failed invite must carry no video url, got %q", final.VideoURL)
	}

	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	if len(h.notifier.failed) != 1 {
		t.Fatalf("expected failure notification, got %#v", h.notifier.failed)
	}
}

func TestManagerRecordsUploadFailure(t *testing.T) {
	h := newManagerHarness(t)
	h.uploader.err = services.Wrap(services.ErrUpload, "uploader", "upload", "bucket gone", nil)
	inv := h.queuedInvite(t)

	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer h.manager.Stop()

	final := h.waitTerminal(t, inv.ID)
	if final.Status != invite.StatusError {
		t.Fatalf("expected error status, got %s", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "bucket gone") {
		t.Fatalf("expected upload failure in error message, got %q", final.ErrorMessage)
	}
}

func TestManagerStartStopIdempotent(t *testing.T) {
	h := newManagerHarness(t)

	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := h.manager.Start(context.Background()); err == nil {
		t.Fatal("expected error on double start")
	}
	h.manager.Stop()
	h.manager.Stop()
	if h.manager.Running() {
		t.Fatal("manager should not report running after stop")
	}
}

func TestStatusSummary(t *testing.T) {
	h := newManagerHarness(t)
	ctx := context.Background()

	if _, err := h.orch.CreateInvite(ctx, "user-1", "minimalist-modern", nil, ""); err != nil {
		t.Fatalf("CreateInvite returned error: %v", err)
	}

	summary, err := h.manager.StatusSummary(ctx)
	if err != nil {
		t.Fatalf("StatusSummary returned error: %v", err)
	}
	if summary.Running {
		t.Fatal("manager not started, should not report running")
	}
	if summary.Counts[invite.StatusDraft] != 1 {
		t.Fatalf("unexpected counts: %#v", summary.Counts)
	}
}
