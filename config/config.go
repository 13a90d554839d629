package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported LLM provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Config holds all application configuration. It is built once at startup and
// passed to constructors; nothing reads the environment after Load returns.
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Fetcher   FetcherConfig
	Output    OutputConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8000
	Mode string // "debug", "release", "test"; default: "release"

	// AllowedOrigins is the CORS allow-list for the browser client.
	AllowedOrigins []string
}

// LLMConfig selects and configures the extraction provider.
type LLMConfig struct {
	// Provider selects the LLM backend: "openai" or "openrouter".
	Provider string // default: "openai"

	// OpenAIKey authenticates against api.openai.com.
	OpenAIKey string

	// OpenAIModel is the chat model used with the OpenAI provider.
	OpenAIModel string // default: "gpt-3.5-turbo"

	// OpenRouterKey authenticates against openrouter.ai.
	OpenRouterKey string

	// OpenRouterModel is the model used with the OpenRouter provider.
	OpenRouterModel string // default: "openai/gpt-3.5-turbo"

	// BaseURL overrides the provider base URL when set. Intended for
	// OpenAI-compatible gateways and tests.
	BaseURL string

	// Timeout bounds each individual LLM API call.
	Timeout time.Duration // default: 30s
}

// FetcherConfig controls page fetching and cleaning.
type FetcherConfig struct {
	// Timeout bounds the page GET request.
	Timeout time.Duration // default: 30s

	// MaxContentLength is the cleaned-text truncation limit in characters.
	MaxContentLength int // default: 100000

	// AllowLocal permits localhost/loopback targets. Off in production;
	// used by tests and local development.
	AllowLocal bool // default: false
}

// OutputConfig controls generated file storage.
type OutputConfig struct {
	// Dir is the directory output documents are written to.
	Dir string // default: "outputs"

	// Retention is how long generated files are kept before the
	// post-request sweep removes them.
	Retention time.Duration // default: 168h (7 days)
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per client IP.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPER_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPER_PORT", 8000),
			Mode: envOr("SCRAPER_MODE", "release"),
			AllowedOrigins: envSliceOr("ALLOWED_ORIGINS", []string{
				"http://localhost:5173", "http://127.0.0.1:5173",
			}),
		},
		LLM: LLMConfig{
			Provider:        envOr("LLM_PROVIDER", ProviderOpenAI),
			OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:     envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
			OpenRouterKey:   os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterModel: envOr("OPENROUTER_MODEL", "openai/gpt-3.5-turbo"),
			BaseURL:         os.Getenv("LLM_BASE_URL"),
			Timeout:         envDurationOr("REQUEST_TIMEOUT", 30*time.Second),
		},
		Fetcher: FetcherConfig{
			Timeout:          envDurationOr("REQUEST_TIMEOUT", 30*time.Second),
			MaxContentLength: envIntOr("MAX_CONTENT_LENGTH", 100000),
			AllowLocal:       envBoolOr("SCRAPER_ALLOW_LOCAL_URLS", false),
		},
		Output: OutputConfig{
			Dir:       envOr("OUTPUT_DIR", "outputs"),
			Retention: envDurationOr("OUTPUT_RETENTION", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPER_RATE_RPS", 5.0),
			Burst:             envIntOr("SCRAPER_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPER_LOG_LEVEL", "info"),
			Format: envOr("SCRAPER_LOG_FORMAT", "json"),
		},
	}
}

// APIKey returns the key for the selected provider, or "" when unset.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderOpenRouter:
		return c.OpenRouterKey
	default:
		return c.OpenAIKey
	}
}

// Model returns the model name for the selected provider.
func (c LLMConfig) Model() string {
	switch c.Provider {
	case ProviderOpenRouter:
		return c.OpenRouterModel
	default:
		return c.OpenAIModel
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare integers are treated as seconds for parity with the
		// historical REQUEST_TIMEOUT=30 style.
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
