package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "PUBLIC_URL", "BIRD_BIN", "XAI_MODEL",
		"MCP_AUTH_TOKEN", "XAI_API_KEY", "OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.BirdBin != "bird" {
		t.Errorf("bird_bin = %q, want bird", cfg.BirdBin)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("addr = %q, want :3000", cfg.Addr())
	}
	if cfg.AuthConfigured() {
		t.Error("auth should not be configured by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("MCP_AUTH_TOKEN", "secret")
	t.Setenv("PUBLIC_URL", "https://x.mcp.example.com/")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.AuthToken != "secret" {
		t.Errorf("auth token = %q", cfg.AuthToken)
	}
	if cfg.PublicURL != "https://x.mcp.example.com" {
		t.Errorf("public url not trimmed: %q", cfg.PublicURL)
	}
	if !cfg.AuthConfigured() {
		t.Error("static token should count as configured auth")
	}
	if cfg.OAuthEnabled() {
		t.Error("oauth should need client id, secret, and public url")
	}
}

func TestLoad_YAMLFileWithEnvWinning(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	body := "port: 4000\npublic_url: https://file.example.com\nbird_bin: /usr/local/bin/bird\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "5000")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("env should win over file: port = %d", cfg.Port)
	}
	if cfg.PublicURL != "https://file.example.com" {
		t.Errorf("public_url from file = %q", cfg.PublicURL)
	}
	if cfg.BirdBin != "/usr/local/bin/bird" {
		t.Errorf("bird_bin from file = %q", cfg.BirdBin)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for non-numeric PORT")
	}

	t.Setenv("PORT", "70000")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for out-of-range PORT")
	}
}

func TestLoad_OAuthEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLIC_URL", "https://x.mcp.example.com")
	t.Setenv("OAUTH_CLIENT_ID", "client")
	t.Setenv("OAUTH_CLIENT_SECRET", "hunter2")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OAuthEnabled() {
		t.Error("oauth should be enabled")
	}
	if !cfg.AuthConfigured() {
		t.Error("oauth should count as configured auth")
	}
}
