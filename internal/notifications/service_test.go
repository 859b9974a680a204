package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"garland/internal/config"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func serviceFor(topic string, renders, errs bool) Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Renders = renders
	cfg.Notifications.Errors = errs
	return NewService(&cfg)
}

func TestNoopWhenTopicEmpty(t *testing.T) {
	svc := serviceFor("", true, true)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyRendered(context.Background(), "Royal", "inv-1", "https://example.com/v.mp4"); err != nil {
		t.Fatalf("noop notify returned error: %v", err)
	}
}

func TestNotifyRenderedSendsMessage(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)
	svc := serviceFor(server.URL, true, true)

	if err := svc.NotifyRendered(context.Background(), "Royal Rajasthani Wedding", "inv-1", "https://cdn.example.com/v.mp4"); err != nil {
		t.Fatalf("NotifyRendered returned error: %v", err)
	}
	if len(sink) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sink))
	}
	got := sink[0]
	if got.title != "Garland - Rendered" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if !strings.Contains(got.body, "Royal Rajasthani Wedding") || !strings.Contains(got.body, "https://cdn.example.com/v.mp4") {
		t.Fatalf("unexpected body %q", got.body)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
}

func TestRenderEventsSuppressedWhenDisabled(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)
	svc := serviceFor(server.URL, false, true)

	if err := svc.NotifyRenderStarted(context.Background(), "Royal", "inv-1"); err != nil {
		t.Fatalf("NotifyRenderStarted returned error: %v", err)
	}
	if len(sink) != 0 {
		t.Fatalf("expected no notifications with renders disabled, got %d", len(sink))
	}

	if err := svc.NotifyRenderFailed(context.Background(), "Royal", "inv-1", "farm down"); err != nil {
		t.Fatalf("NotifyRenderFailed returned error: %v", err)
	}
	if len(sink) != 1 {
		t.Fatalf("expected failure notification with errors enabled, got %d", len(sink))
	}
}

func TestNotifyErrorFormatsContext(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)
	svc := serviceFor(server.URL, true, true)

	if err := svc.NotifyError(context.Background(), errors.New("database locked"), "invite inv-1"); err != nil {
		t.Fatalf("NotifyError returned error: %v", err)
	}
	if len(sink) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sink))
	}
	if !strings.Contains(sink[0].body, "invite inv-1") || !strings.Contains(sink[0].body, "database locked") {
		t.Fatalf("unexpected body %q", sink[0].body)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()
	svc := serviceFor(server.URL, true, true)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for http 403")
	}
}
