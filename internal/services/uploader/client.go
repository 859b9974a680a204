package uploader

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

const defaultHTTPTimeout = 5 * time.Minute

// Config captures the runtime settings for the upload endpoint.
type Config struct {
	BaseURL        string
	KeyPrefix      string
	TimeoutSeconds int
}

// Request describes one asset publication.
type Request struct {
	InviteID string `json:"invite_id"`
	AssetID  string `json:"asset_id"`
	Key      string `json:"key"`
}

// Result carries the public URL of a published asset.
type Result struct {
	URL string `json:"url"`
}

// Service publishes rendered assets to durable storage.
type Service interface {
	Upload(ctx context.Context, req Request) (*Result, error)
}

// Client talks to the upload service over HTTP.
type Client struct {
	baseURL    string
	keyPrefix  string
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

// NewClient constructs an upload client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		keyPrefix:  strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// KeyFor builds the storage key for an invite's rendered video.
func (c *Client) KeyFor(inviteID string) string {
	if c.keyPrefix == "" {
		return inviteID + ".mp4"
	}
	return c.keyPrefix + "/" + inviteID + ".mp4"
}

// Upload publishes a rendered asset and returns its public URL.
func (c *Client) Upload(ctx context.Context, req Request) (*Result, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "base url not configured", nil)
	}
	if req.AssetID == "" {
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "asset id required", nil)
	}
	if req.Key == "" {
		req.Key = c.KeyFor(req.InviteID)
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("upload request: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
			return nil, services.Wrap(services.ErrTimeout, "uploader", "upload", "upload timed out", err)
		}
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "upload service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "read response", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := fmt.Sprintf("upload service returned http %d", resp.StatusCode)
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", message, errors.New(strings.TrimSpace(string(body))))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "decode response", err)
	}
	if strings.TrimSpace(result.URL) == "" {
		return nil, services.Wrap(services.ErrUpload, "uploader", "upload", "upload service returned no url", nil)
	}
	return &result, nil
}
