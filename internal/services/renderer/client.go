package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"garland/internal/services"
)

const defaultHTTPTimeout = 10 * time.Minute

// Config captures the runtime settings for the render farm endpoint.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Request describes one render job.
type Request struct {
	InviteID        string            `json:"invite_id"`
	CompositionID   string            `json:"composition_id"`
	DurationSeconds int               `json:"duration_seconds"`
	Values          map[string]string `json:"values"`
	MusicChoice     string            `json:"music_choice,omitempty"`
}

// Result is the render farm's response for a completed job.
type Result struct {
	AssetID string `json:"asset_id"`
}

// Service renders an invitation video from a template composition.
type Service interface {
	Render(ctx context.Context, req Request) (*Result, error)
}

// Client talks to the render farm over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a render farm client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Render submits a job and blocks until the farm reports completion.
func (c *Client) Render(ctx context.Context, req Request) (*Result, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrRender, "renderer", "render", "base url not configured", nil)
	}
	if req.CompositionID == "" {
		return nil, services.Wrap(services.ErrValidation, "renderer", "render", "composition id required", nil)
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("render request: encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("render request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return nil, services.Wrap(services.ErrTimeout, "renderer", "render", "render timed out", err)
		}
		return nil, services.Wrap(services.ErrRender, "renderer", "render", "render farm unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrRender, "renderer", "render", "read response", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := fmt.Sprintf("render farm returned http %d", resp.StatusCode)
		return nil, services.Wrap(services.ErrRender, "renderer", "render", message, errors.New(strings.TrimSpace(string(body))))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, services.Wrap(services.ErrRender, "renderer", "render", "decode response", err)
	}
	if strings.TrimSpace(result.AssetID) == "" {
		return nil, services.Wrap(services.ErrRender, "renderer", "render", "render farm returned no asset id", nil)
	}
	return &result, nil
}
