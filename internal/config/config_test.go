package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsToMockMode(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.MockMode() {
		t.Fatalf("MockMode() = false, want true with empty API_BASE_URL")
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.Delay != 500*time.Millisecond {
		t.Fatalf("retry defaults = %d/%s, want 3/500ms", cfg.Retry.Attempts, cfg.Retry.Delay)
	}
}

func TestLoadLiveModeAndDurations(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://127.0.0.1:8000")
	t.Setenv("RETRY_DELAY", "250")
	t.Setenv("REPORT_COMPLETION_DELAY", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MockMode() {
		t.Fatalf("MockMode() = true, want false")
	}
	if cfg.Retry.Delay != 250*time.Millisecond {
		t.Fatalf("Retry.Delay = %s, want 250ms", cfg.Retry.Delay)
	}
	if cfg.Reports.CompletionDelay != 2*time.Second {
		t.Fatalf("CompletionDelay = %s, want 2s", cfg.Reports.CompletionDelay)
	}
}

func TestLoadRejectsUnknownProviders(t *testing.T) {
	cases := map[string]string{
		"SESSION_REMEMBER_STORE": "cookie",
		"STORAGE_PROVIDER":       "ftp",
		"REPORT_QUEUE":           "cron",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s succeeded, want error", key, value)
			}
		})
	}
}
