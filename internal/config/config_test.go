package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/spoils")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Errorf("got port %d, want 8080", cfg.HTTPPort)
	}
	if cfg.WorkerConcurrency != 5 {
		t.Errorf("got concurrency %d, want 5", cfg.WorkerConcurrency)
	}
	if cfg.WorkerPollInterval != time.Second {
		t.Errorf("got poll interval %v, want 1s", cfg.WorkerPollInterval)
	}
	if cfg.LeaseTimeout != 5*time.Minute {
		t.Errorf("got lease timeout %v, want 5m", cfg.LeaseTimeout)
	}
	if cfg.NutritionAPIURL == "" {
		t.Error("expected default nutrition API URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/spoils")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "12")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("JOB_RETENTION", "168h")
	t.Setenv("NUTRITION_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("got port %d, want 9090", cfg.HTTPPort)
	}
	if cfg.WorkerConcurrency != 12 {
		t.Errorf("got concurrency %d, want 12", cfg.WorkerConcurrency)
	}
	if cfg.WorkerPollInterval != 250*time.Millisecond {
		t.Errorf("got poll interval %v, want 250ms", cfg.WorkerPollInterval)
	}
	if cfg.JobRetention != 168*time.Hour {
		t.Errorf("got retention %v, want 168h", cfg.JobRetention)
	}
	if cfg.NutritionAPIKey != "test-key" {
		t.Errorf("got api key %q, want test-key", cfg.NutritionAPIKey)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-port"},
		{"bad concurrency", "WORKER_CONCURRENCY", "many"},
		{"bad poll interval", "WORKER_POLL_INTERVAL", "soon"},
		{"bad lease timeout", "LEASE_TIMEOUT", "5 minutes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/spoils")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
