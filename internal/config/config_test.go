package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.StorageBackend != "localfs" {
		t.Fatalf("expected default storage backend localfs, got %q", cfg.StorageBackend)
	}
	if cfg.AILabTimeoutSeconds != 240 {
		t.Fatalf("expected default gateway timeout 240s, got %d", cfg.AILabTimeoutSeconds)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected default rate limit 20 rps, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("api_port: \"9999\"\nstorage_backend: minio\nminio_bucket: file-bucket\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "7070")
	t.Setenv("MINIO_BUCKET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7070" {
		t.Fatalf("env must win over file, got api port %q", cfg.APIPort)
	}
	if cfg.StorageBackend != "minio" {
		t.Fatalf("file value not applied, got backend %q", cfg.StorageBackend)
	}
	if cfg.MinioBucket != "file-bucket" {
		t.Fatalf("file value not applied, got bucket %q", cfg.MinioBucket)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not valid"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed config file")
	}
}

func TestLoadIgnoresUnparsableNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxUploadMB != 25 {
		t.Fatalf("expected fallback 25, got %d", cfg.MaxUploadMB)
	}
}
