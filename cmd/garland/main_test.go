package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"garland/internal/config"
	"garland/internal/invite"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "garland.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
api_bind = ""
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	full := args
	if configPath != "" {
		full = append([]string{"--config", configPath}, args...)
	}
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, configPath)
	requireContains(t, out, "api bind:   disabled")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote starter configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init without --force to fail on existing file")
	}
	if _, err := runCLI(t, "", "config", "init", "--path", target, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestSeedAndTemplatesList(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "seed")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	requireContains(t, out, "Seeded 5 templates")

	out, err = runCLI(t, configPath, "templates", "list")
	if err != nil {
		t.Fatalf("templates list: %v", err)
	}
	requireContains(t, out, "royal-rajasthani-wedding")
	requireContains(t, out, "Modern Fusion Celebration")

	out, err = runCLI(t, configPath, "templates", "show", "luxury-gold-affair")
	if err != nil {
		t.Fatalf("templates show: %v", err)
	}
	requireContains(t, out, "Luxury Gold Affair")
	requireContains(t, out, "brideName")
}

func TestStatusWithEmptyStore(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "No invitations yet")
}

func TestInvitesListWithEmptyStore(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "invites", "list")
	if err != nil {
		t.Fatalf("invites list: %v", err)
	}
	requireContains(t, out, "No invitations found")
}

func TestInvitesRemove(t *testing.T) {
	configPath := writeTestConfig(t)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := invite.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	inv, err := store.Create(context.Background(), "user-1", "tmpl", nil, "")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, err := runCLI(t, configPath, "invites", "remove", inv.ID)
	if err != nil {
		t.Fatalf("invites remove: %v", err)
	}
	requireContains(t, out, "Removed invitation "+inv.ID)

	if _, err := runCLI(t, configPath, "invites", "remove", inv.ID); err == nil {
		t.Fatal("expected removing a missing invitation to fail")
	}
}

func TestInvitesListRejectsUnknownStatus(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, configPath, "invites", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestSuggestRequiresAPIKey(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, configPath, "suggest", "royal"); err == nil {
		t.Fatal("expected suggest to fail without an api key")
	}
}
