package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"garland/internal/config"
)

const userAgent = "Garland-Go/0.1.0"

// Service defines the notification surface exposed to render components.
type Service interface {
	NotifyRenderStarted(ctx context.Context, templateTitle, inviteID string) error
	NotifyRendered(ctx context.Context, templateTitle, inviteID, videoURL string) error
	NotifyRenderFailed(ctx context.Context, templateTitle, inviteID, reason string) error
	NotifyCatalogSeeded(ctx context.Context, count int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		renderEvents: cfg.Notifications.Renders,
		errorEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	renderEvents bool
	errorEvents  bool
}

func (n *ntfyService) NotifyRenderStarted(ctx context.Context, templateTitle, inviteID string) error {
	if !n.renderEvents {
		return nil
	}
	data := payload{
		title:   "Garland - Render Started",
		message: fmt.Sprintf("Started rendering %s (%s)", strings.TrimSpace(templateTitle), inviteID),
		tags:    []string{"garland", "render", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRendered(ctx context.Context, templateTitle, inviteID, videoURL string) error {
	if !n.renderEvents {
		return nil
	}
	message := fmt.Sprintf("Invitation ready: %s (%s)", strings.TrimSpace(templateTitle), inviteID)
	if videoURL = strings.TrimSpace(videoURL); videoURL != "" {
		message = fmt.Sprintf("%s\nVideo: %s", message, videoURL)
	}
	data := payload{
		title:    "Garland - Rendered",
		message:  message,
		tags:     []string{"garland", "render", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderFailed(ctx context.Context, templateTitle, inviteID, reason string) error {
	if !n.errorEvents {
		return nil
	}
	message := fmt.Sprintf("Render failed: %s (%s)", strings.TrimSpace(templateTitle), inviteID)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:    "Garland - Render Failed",
		message:  message,
		tags:     []string{"garland", "render", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCatalogSeeded(ctx context.Context, count int) error {
	data := payload{
		title:   "Garland - Catalog Seeded",
		message: fmt.Sprintf("Template catalog seeded with %d templates", count),
		tags:    []string{"garland", "catalog", "seeded"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Garland - Error",
		message:  builder.String(),
		tags:     []string{"garland", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Garland - Test",
		message:  "Notification system test",
		tags:     []string{"garland", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRenderStarted(context.Context, string, string) error        { return nil }
func (noopService) NotifyRendered(context.Context, string, string, string) error     { return nil }
func (noopService) NotifyRenderFailed(context.Context, string, string, string) error { return nil }
func (noopService) NotifyCatalogSeeded(context.Context, int) error                   { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
