package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.FetchMode != "ajax" {
		t.Errorf("FetchMode = %s, want ajax", cfg.FetchMode)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %s, want memory", cfg.StorageBackend)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %s, want 1h", cfg.CacheTTL)
	}
	if cfg.CheckInterval != 120*time.Minute {
		t.Errorf("CheckInterval = %s, want 2h", cfg.CheckInterval)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.MaxPages != 500 {
		t.Errorf("MaxPages = %d, want 500", cfg.MaxPages)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_MODE", "api")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("MAX_PAGES", "20")
	t.Setenv("REQUESTS_PER_SEC", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.FetchMode != "api" {
		t.Errorf("FetchMode = %s, want api", cfg.FetchMode)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %s, want 30m", cfg.CacheTTL)
	}
	if cfg.MaxPages != 20 {
		t.Errorf("MaxPages = %d, want 20", cfg.MaxPages)
	}
	if cfg.RequestsPerSec != 0.5 {
		t.Errorf("RequestsPerSec = %v, want 0.5", cfg.RequestsPerSec)
	}
}

func TestLoadInvalidFetchMode(t *testing.T) {
	t.Setenv("FETCH_MODE", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown FETCH_MODE")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unparseable CACHE_TTL")
	}
}

func TestLoadFirestoreRequiresProject(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should require GOOGLE_CLOUD_PROJECT for firestore")
	}

	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.ProjectID != "test-project" {
		t.Errorf("ProjectID = %s, want test-project", cfg.ProjectID)
	}
}

func TestLoadUnknownStorageBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "clay-tablets")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown STORAGE_BACKEND")
	}
}
