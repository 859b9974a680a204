package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Auth maps bearer tokens to stable user identifiers and holds the admin token.
type Auth struct {
	AdminToken string            `toml:"admin_token"`
	Tokens     map[string]string `toml:"tokens"`
}

// Renderer contains configuration for the external video render service.
type Renderer struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Uploader contains configuration for the external asset storage service.
type Uploader struct {
	BaseURL        string `toml:"base_url"`
	KeyPrefix      string `toml:"key_prefix"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Music contains connection settings for the music suggestion LLM.
type Music struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Catalog contains template catalog cache settings.
type Catalog struct {
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// Workflow contains render worker timing and concurrency settings.
type Workflow struct {
	QueuePollInterval    int `toml:"queue_poll_interval"`
	ErrorRetryInterval   int `toml:"error_retry_interval"`
	HeartbeatInterval    int `toml:"heartbeat_interval"`
	HeartbeatTimeout     int `toml:"heartbeat_timeout"`
	RenderTimeoutSeconds int `toml:"render_timeout_seconds"`
	WorkerCount          int `toml:"worker_count"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Renders        bool   `toml:"renders"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Garland.
//
// Sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Auth: bearer tokens for API users and the admin token
//   - Renderer: external render service connection
//   - Uploader: external asset storage connection
//   - Music: music suggestion LLM connection
//   - Catalog: template cache TTL
//   - Workflow: render worker polling, heartbeat, and timeout settings
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Auth          Auth          `toml:"auth"`
	Renderer      Renderer      `toml:"renderer"`
	Uploader      Uploader      `toml:"uploader"`
	Music         Music         `toml:"music"`
	Catalog       Catalog       `toml:"catalog"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/garland/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("garland.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Renderer.BaseURL = strings.TrimSpace(c.Renderer.BaseURL)
	c.Uploader.BaseURL = strings.TrimSpace(c.Uploader.BaseURL)
	c.Music.APIKey = strings.TrimSpace(c.Music.APIKey)
	c.Music.BaseURL = strings.TrimSpace(c.Music.BaseURL)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

// Validate checks configuration values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("config: data_dir is required")
	}
	if c.Paths.LogDir == "" {
		return errors.New("config: log_dir is required")
	}
	for _, pair := range []struct {
		name  string
		value string
	}{
		{"renderer.base_url", c.Renderer.BaseURL},
		{"uploader.base_url", c.Uploader.BaseURL},
	} {
		if pair.value == "" {
			continue
		}
		if _, err := url.ParseRequestURI(pair.value); err != nil {
			return fmt.Errorf("config: %s is not a valid URL: %w", pair.name, err)
		}
	}
	if c.Workflow.WorkerCount < 1 {
		return errors.New("config: workflow.worker_count must be at least 1")
	}
	for _, pair := range []struct {
		name  string
		value int
	}{
		{"workflow.queue_poll_interval", c.Workflow.QueuePollInterval},
		{"workflow.error_retry_interval", c.Workflow.ErrorRetryInterval},
		{"workflow.heartbeat_interval", c.Workflow.HeartbeatInterval},
		{"workflow.heartbeat_timeout", c.Workflow.HeartbeatTimeout},
	} {
		if pair.value < 1 {
			return fmt.Errorf("config: %s must be at least 1", pair.name)
		}
	}
	if c.Workflow.RenderTimeoutSeconds < 0 {
		return errors.New("config: workflow.render_timeout_seconds must not be negative")
	}
	if c.Catalog.CacheTTLSeconds < 0 {
		return errors.New("config: catalog.cache_ttl_seconds must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging.format %q is not supported", c.Logging.Format)
	}
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the sqlite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "garland.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
