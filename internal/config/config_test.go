package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("Unexpected default API URL: %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Unexpected default HTTP timeout: %s", cfg.HTTPTimeout)
	}
	if cfg.ThumbnailCacheCap != DefaultThumbnailCacheCap {
		t.Errorf("Unexpected default cache cap: %d", cfg.ThumbnailCacheCap)
	}
	if cfg.ThumbnailMaxWidth != 0 {
		t.Errorf("Expected no downscaling by default, got %d", cfg.ThumbnailMaxWidth)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("Unexpected default sync interval: %s", cfg.SyncInterval)
	}
	if cfg.BridgePort != "8090" {
		t.Errorf("Unexpected default bridge port: %s", cfg.BridgePort)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VIDSUM_API_URL", "https://api.example.com")
	t.Setenv("VIDSUM_HTTP_TIMEOUT", "10s")
	t.Setenv("VIDSUM_THUMBNAIL_CACHE_CAP", "1048576")
	t.Setenv("VIDSUM_THUMBNAIL_MAX_WIDTH", "320")
	t.Setenv("VIDSUM_SYNC_INTERVAL", "5m")
	t.Setenv("VIDSUM_BRIDGE_PORT", "9999")

	cfg := Load()

	if cfg.APIBaseURL != "https://api.example.com" {
		t.Errorf("Expected env API URL, got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.ThumbnailCacheCap != 1048576 {
		t.Errorf("Expected 1 MB cache cap, got %d", cfg.ThumbnailCacheCap)
	}
	if cfg.ThumbnailMaxWidth != 320 {
		t.Errorf("Expected max width 320, got %d", cfg.ThumbnailMaxWidth)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("Expected 5m interval, got %s", cfg.SyncInterval)
	}
	if cfg.BridgePort != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.BridgePort)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VIDSUM_HTTP_TIMEOUT", "soon")
	t.Setenv("VIDSUM_THUMBNAIL_CACHE_CAP", "lots")
	t.Setenv("VIDSUM_THUMBNAIL_MAX_WIDTH", "wide")

	cfg := Load()

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected default timeout for malformed value, got %s", cfg.HTTPTimeout)
	}
	if cfg.ThumbnailCacheCap != DefaultThumbnailCacheCap {
		t.Errorf("Expected default cache cap for malformed value, got %d", cfg.ThumbnailCacheCap)
	}
	if cfg.ThumbnailMaxWidth != 0 {
		t.Errorf("Expected default max width for malformed value, got %d", cfg.ThumbnailMaxWidth)
	}
}
