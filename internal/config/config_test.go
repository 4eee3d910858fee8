package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default server port 8080, got %q", cfg.ServerPort)
	}
	if cfg.AMSName != "fineract" {
		t.Errorf("expected default AMS name fineract, got %q", cfg.AMSName)
	}
	if cfg.AMSTimeoutMs != 5000 {
		t.Errorf("expected default timeout 5000ms, got %d", cfg.AMSTimeoutMs)
	}
	if cfg.AMSLocalEnabled {
		t.Error("expected the AMS integration to default to disabled")
	}
	if cfg.AMSTenantID != "default" {
		t.Errorf("expected default tenant id, got %q", cfg.AMSTenantID)
	}
	if cfg.WorkerMaxJobs != 10 {
		t.Errorf("expected default worker max jobs 10, got %d", cfg.WorkerMaxJobs)
	}
	if cfg.JobQueuePrefix != "orchestrator.jobs" {
		t.Errorf("expected default job queue prefix, got %q", cfg.JobQueuePrefix)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("AMS_BASE_URL", "http://fineract.local:8443/")
	t.Setenv("AMS_LOCAL_ENABLED", "true")
	t.Setenv("AMS_TIMEOUT_MS", "2500")
	t.Setenv("WORKER_MAX_JOBS", "3")
	t.Setenv("INTERNAL_API_KEY", "  secret  ")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.ServerPort != "9091" {
		t.Errorf("expected server port 9091, got %q", cfg.ServerPort)
	}
	if cfg.AMSBaseURL != "http://fineract.local:8443" {
		t.Errorf("expected trailing slash to be trimmed, got %q", cfg.AMSBaseURL)
	}
	if !cfg.AMSLocalEnabled {
		t.Error("expected the AMS integration to be enabled")
	}
	if cfg.AMSTimeoutMs != 2500 {
		t.Errorf("expected timeout 2500ms, got %d", cfg.AMSTimeoutMs)
	}
	if cfg.WorkerMaxJobs != 3 {
		t.Errorf("expected worker max jobs 3, got %d", cfg.WorkerMaxJobs)
	}
	if cfg.InternalAPIKey != "secret" {
		t.Errorf("expected trimmed api key, got %q", cfg.InternalAPIKey)
	}
}

func TestLoadConfig_NonPositiveValuesFallBack(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("AMS_TIMEOUT_MS", "0")
	t.Setenv("WORKER_MAX_JOBS", "-1")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.AMSTimeoutMs != 5000 {
		t.Errorf("expected timeout fallback 5000ms, got %d", cfg.AMSTimeoutMs)
	}
	if cfg.WorkerMaxJobs != 10 {
		t.Errorf("expected worker max jobs fallback 10, got %d", cfg.WorkerMaxJobs)
	}
}
