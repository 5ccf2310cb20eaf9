package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Validator providers.
const (
	ProviderNone   = "none"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

type Config struct {
	Port string

	// Auth
	JobparseAPIKey string

	// Pathstore connection
	PathstoreURL    string
	PathstoreAPIKey string

	// Secondary field validation
	ValidatorProvider string
	AnthropicAPIKey   string
	AnthropicModel    string
	GeminiAPIKey      string
	GeminiModel       string

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentValidate int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Parse cache. Empty path disables it.
	CachePath string
	CacheTTL  time.Duration

	// Parser tuning file (YAML). Empty uses built-in defaults.
	ParserConfig   string
	DetectLanguage bool
}

// LoadEnvFile copies variables from a .env file into the environment
// without overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		JobparseAPIKey: os.Getenv("JOBPARSE_API_KEY"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		ValidatorProvider: strings.ToLower(envOr("VALIDATOR_PROVIDER", ProviderNone)),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.0-flash"),

		WorkerCount:           envInt("WORKER_COUNT", 4),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentValidate: envInt("MAX_CONCURRENT_VALIDATE", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		CachePath: os.Getenv("CACHE_PATH"),
		CacheTTL:  envDuration("CACHE_TTL", 24*time.Hour),

		ParserConfig:   os.Getenv("PARSER_CONFIG"),
		DetectLanguage: envBool("DETECT_LANGUAGE", false),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentValidate <= 0 {
		cfg.MaxConcurrentValidate = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheTTL < 0 {
		cfg.CacheTTL = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.JobparseAPIKey == "" {
		return fmt.Errorf("JOBPARSE_API_KEY is required")
	}
	if c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required")
	}
	switch c.ValidatorProvider {
	case ProviderNone:
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when VALIDATOR_PROVIDER=claude")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when VALIDATOR_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("VALIDATOR_PROVIDER must be none, claude or gemini, got %q", c.ValidatorProvider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
