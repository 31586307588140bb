package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Wiki.Endpoint != defaultEndpoint {
		t.Fatalf("expected default endpoint, got %q", cfg.Wiki.Endpoint)
	}
	if cfg.RefreshDelayDuration() != defaultRefreshDelay {
		t.Fatalf("expected default refresh delay, got %v", cfg.RefreshDelayDuration())
	}
}

func TestLoadParsesYamlAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
wiki:
  endpoint: https://wiki.example/w/api.php
  user_name: Alice
redis:
  addr: localhost:6379
  ttl: 24h
refresh_delay: 5s
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Wiki.Endpoint != "https://wiki.example/w/api.php" {
		t.Fatalf("endpoint not parsed: %q", cfg.Wiki.Endpoint)
	}
	if cfg.Wiki.UserName != "Alice" {
		t.Fatalf("user_name not parsed: %q", cfg.Wiki.UserName)
	}
	if cfg.Wiki.Summary != defaultSummary {
		t.Fatalf("missing summary should default, got %q", cfg.Wiki.Summary)
	}
	if cfg.RedisTTL() != 24*time.Hour {
		t.Fatalf("ttl not parsed: %v", cfg.RedisTTL())
	}
	if cfg.RefreshDelayDuration() != 5*time.Second {
		t.Fatalf("refresh_delay not parsed: %v", cfg.RefreshDelayDuration())
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("wiki: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestBadDurationsFallBack(t *testing.T) {
	cfg := Default()
	cfg.RefreshDelay = "soon"
	cfg.Redis.TTL = "-5s"
	if cfg.RefreshDelayDuration() != defaultRefreshDelay {
		t.Fatalf("bad refresh_delay should fall back, got %v", cfg.RefreshDelayDuration())
	}
	if cfg.RedisTTL() != 0 {
		t.Fatalf("negative ttl should mean no expiry, got %v", cfg.RedisTTL())
	}
}
