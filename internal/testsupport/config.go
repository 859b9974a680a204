package testsupport

import (
	"path/filepath"
	"testing"

	"garland/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 30
	cfg.Auth.AdminToken = "test-admin-token"
	cfg.Auth.Tokens = map[string]string{
		"test-token": "test-user",
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTokens replaces the auth token table on the test config.
func WithTokens(tokens map[string]string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Auth.Tokens = tokens
	}
}

// WithWorkers overrides the render worker count.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.WorkerCount = count
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
