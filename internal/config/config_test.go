package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "JOBPARSE_API_KEY", "PATHSTORE_URL", "PATHSTORE_API_KEY",
		"VALIDATOR_PROVIDER", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_CONCURRENT_VALIDATE", "MAX_UPLOAD_BYTES", "JOB_TTL",
		"PDF_FALLBACK_PDFTOTEXT", "CACHE_PATH", "CACHE_TTL", "PARSER_CONFIG", "DETECT_LANGUAGE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %s", cfg.Port)
	}
	if cfg.ValidatorProvider != ProviderNone {
		t.Errorf("expected provider none, got %s", cfg.ValidatorProvider)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxConcurrentValidate != 5 {
		t.Errorf("unexpected pool defaults %+v", cfg)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("expected 10 MiB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour || cfg.CacheTTL != 24*time.Hour {
		t.Errorf("unexpected ttl defaults job=%v cache=%v", cfg.JobTTL, cfg.CacheTTL)
	}
	if !cfg.PDFFallbackPdftotext || cfg.DetectLanguage {
		t.Errorf("unexpected bool defaults %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("VALIDATOR_PROVIDER", "Gemini")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("MAX_QUEUE_SIZE", "-1")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("CACHE_PATH", "/tmp/cache.db")
	t.Setenv("CACHE_TTL", "garbage")
	t.Setenv("DETECT_LANGUAGE", "true")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.ValidatorProvider != ProviderGemini {
		t.Errorf("expected provider lowercased, got %s", cfg.ValidatorProvider)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected non-positive queue size reset to 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %v", cfg.JobTTL)
	}
	if cfg.CachePath != "/tmp/cache.db" || cfg.CacheTTL != 24*time.Hour {
		t.Errorf("unexpected cache config %q %v", cfg.CachePath, cfg.CacheTTL)
	}
	if !cfg.DetectLanguage {
		t.Error("expected language detection enabled")
	}
}

func TestValidate(t *testing.T) {
	base := Config{JobparseAPIKey: "k", PathstoreAPIKey: "p", ValidatorProvider: ProviderNone}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing api key", func(c *Config) { c.JobparseAPIKey = "" }, true},
		{"missing pathstore key", func(c *Config) { c.PathstoreAPIKey = "" }, true},
		{"claude without key", func(c *Config) { c.ValidatorProvider = ProviderClaude }, true},
		{"claude with key", func(c *Config) { c.ValidatorProvider = ProviderClaude; c.AnthropicAPIKey = "a" }, false},
		{"gemini without key", func(c *Config) { c.ValidatorProvider = ProviderGemini }, true},
		{"gemini with key", func(c *Config) { c.ValidatorProvider = ProviderGemini; c.GeminiAPIKey = "g" }, false},
		{"unknown provider", func(c *Config) { c.ValidatorProvider = "openai" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	os.Unsetenv("WORKER_COUNT")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("WORKER_COUNT")
	})

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=7777\nWORKER_COUNT=2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := Load()
	if cfg.Port != "7777" || cfg.WorkerCount != 2 {
		t.Errorf("expected values from .env, got port=%s workers=%d", cfg.Port, cfg.WorkerCount)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}
