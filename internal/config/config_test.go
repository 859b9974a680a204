package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"garland/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Workflow.WorkerCount != 2 {
		t.Fatalf("expected default worker count 2, got %d", cfg.Workflow.WorkerCount)
	}
	if cfg.Catalog.CacheTTLSeconds != 300 {
		t.Fatalf("expected default cache TTL 300, got %d", cfg.Catalog.CacheTTLSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = "127.0.0.1:0"

[renderer]
base_url = "http://localhost:9500"

[auth.tokens]
"tok-1" = "user-1"

[workflow]
worker_count = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Renderer.BaseURL != "http://localhost:9500" {
		t.Fatalf("unexpected renderer base url: %q", cfg.Renderer.BaseURL)
	}
	if cfg.Auth.Tokens["tok-1"] != "user-1" {
		t.Fatalf("unexpected token map: %#v", cfg.Auth.Tokens)
	}
	if cfg.Workflow.WorkerCount != 4 {
		t.Fatalf("expected worker count 4, got %d", cfg.Workflow.WorkerCount)
	}
	// Defaults survive partial files.
	if cfg.Music.BaseURL == "" {
		t.Fatal("expected default music base url")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "bad renderer url",
			mutate: func(c *config.Config) { c.Renderer.BaseURL = "not a url" },
			want:   "renderer.base_url",
		},
		{
			name:   "zero workers",
			mutate: func(c *config.Config) { c.Workflow.WorkerCount = 0 },
			want:   "worker_count",
		},
		{
			name:   "zero heartbeat interval",
			mutate: func(c *config.Config) { c.Workflow.HeartbeatInterval = 0 },
			want:   "heartbeat_interval",
		},
		{
			name:   "zero queue poll interval",
			mutate: func(c *config.Config) { c.Workflow.QueuePollInterval = 0 },
			want:   "queue_poll_interval",
		},
		{
			name:   "negative render timeout",
			mutate: func(c *config.Config) { c.Workflow.RenderTimeoutSeconds = -1 },
			want:   "render_timeout_seconds",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "yaml" },
			want:   "logging.format",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Paths.LogDir = t.TempDir()
			cfg.Workflow.WorkerCount = 2
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when file already exists")
	}
}
