package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.HTTPPort)
	}
	if cfg.QueueName != "predictions" {
		t.Errorf("expected queue predictions, got %s", cfg.QueueName)
	}
	if cfg.StatusTTL != 0 {
		t.Errorf("expected no status TTL, got %v", cfg.StatusTTL)
	}
	if cfg.StreamPollTimeout != time.Second {
		t.Errorf("expected 1s poll timeout, got %v", cfg.StreamPollTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://redis:6379/1")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STATUS_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RedisURL != "redis://redis:6379/1" {
		t.Errorf("expected env redis url, got %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.StatusTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.StatusTTL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "http_port: 8081\nupload_dir: /tmp/up\nqueue_name: batch\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPPort != 8081 {
		t.Errorf("expected port 8081 from file, got %d", cfg.HTTPPort)
	}
	if cfg.UploadDir != "/tmp/up" {
		t.Errorf("expected upload dir from file, got %s", cfg.UploadDir)
	}
	if cfg.QueueName != "batch" {
		t.Errorf("expected queue batch, got %s", cfg.QueueName)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http_port: 8081\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 7000 {
		t.Errorf("expected env to win, got %d", cfg.HTTPPort)
	}
}
