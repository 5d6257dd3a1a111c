package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Fetch     FetchConfig
	Mirror    MirrorConfig
	AI        AIConfig
	Pipeline  PipelineConfig
	Batch     BatchConfig
	Search    SearchConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the payload cache. When RedisAddr is set the cache
// is shared through Redis, otherwise it lives in process memory.
type CacheConfig struct {
	MaxEntries    int           // default: 1000
	TTL           time.Duration // default: 1h
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"

	// File, when set, receives a rotated copy of every log line.
	File string
}

// FetchConfig controls the direct fetch strategy runner.
type FetchConfig struct {
	// Timeout bounds a single profile attempt.
	Timeout time.Duration // default: 12s

	// MaxRedirects caps redirects followed per attempt.
	MaxRedirects int // default: 5

	// MinContentLength is the body size above which a response is usable.
	MinContentLength int // default: 1000

	// LargeContentLength is the body size that stops the profile loop early.
	LargeContentLength int // default: 50000

	// Profiles lists profile names in the order they are tried.
	Profiles []string // default: crawler, desktop, mobile, minimal
}

// MirrorConfig controls the text-rendering mirror stage.
type MirrorConfig struct {
	Enabled bool          // default: true
	BaseURL string        // default: "https://r.jina.ai/"
	Timeout time.Duration // default: 15s
}

// AIConfig controls the completion providers.
type AIConfig struct {
	OpenAIKey     string
	OpenAIModel   string // default: "gpt-4o-mini"
	OpenAIBaseURL string // default: "https://api.openai.com/v1"
	GeminiKey     string
	GeminiModel   string        // default: "gemini-2.0-flash"
	Timeout       time.Duration // default: 20s
}

// PipelineConfig bounds a whole extraction.
type PipelineConfig struct {
	Timeout time.Duration // default: 60s
}

// BatchConfig controls batch extraction.
type BatchConfig struct {
	Concurrency int // default: 4
	MaxURLs     int // default: 50
}

// SearchConfig controls multi-platform search.
type SearchConfig struct {
	// Timeout bounds each platform's fetch, across all profiles.
	Timeout time.Duration // default: 25s
	Limit   int           // results kept per platform; default: 5
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PRICELENS_HOST", "0.0.0.0"),
			Port: envIntOr("PRICELENS_PORT", 8080),
			Mode: envOr("PRICELENS_MODE", "release"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PRICELENS_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PRICELENS_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PRICELENS_RATE_RPS", 2.0),
			Burst:             envIntOr("PRICELENS_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries:    envIntOr("PRICELENS_CACHE_MAX_ENTRIES", 1000),
			TTL:           envDurationOr("PRICELENS_CACHE_TTL", time.Hour),
			RedisAddr:     os.Getenv("PRICELENS_REDIS_ADDR"),
			RedisPassword: os.Getenv("PRICELENS_REDIS_PASSWORD"),
			RedisDB:       envIntOr("PRICELENS_REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  envOr("PRICELENS_LOG_LEVEL", "info"),
			Format: envOr("PRICELENS_LOG_FORMAT", "json"),
			File:   os.Getenv("PRICELENS_LOG_FILE"),
		},
		Fetch: FetchConfig{
			Timeout:            envDurationOr("PRICELENS_FETCH_TIMEOUT", 12*time.Second),
			MaxRedirects:       envIntOr("PRICELENS_FETCH_MAX_REDIRECTS", 5),
			MinContentLength:   envIntOr("PRICELENS_FETCH_MIN_CONTENT", 1000),
			LargeContentLength: envIntOr("PRICELENS_FETCH_LARGE_CONTENT", 50000),
			Profiles:           envSliceOr("PRICELENS_FETCH_PROFILES", []string{"crawler", "desktop", "mobile", "minimal"}),
		},
		Mirror: MirrorConfig{
			Enabled: envBoolOr("PRICELENS_MIRROR_ENABLED", true),
			BaseURL: envOr("PRICELENS_MIRROR_URL", "https://r.jina.ai/"),
			Timeout: envDurationOr("PRICELENS_MIRROR_TIMEOUT", 15*time.Second),
		},
		AI: AIConfig{
			OpenAIKey:     envOr("PRICELENS_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			OpenAIModel:   envOr("PRICELENS_OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: envOr("PRICELENS_OPENAI_BASE_URL", "https://api.openai.com/v1"),
			GeminiKey:     envOr("PRICELENS_GEMINI_API_KEY", os.Getenv("GEMINI_API_KEY")),
			GeminiModel:   envOr("PRICELENS_GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:       envDurationOr("PRICELENS_AI_TIMEOUT", 20*time.Second),
		},
		Pipeline: PipelineConfig{
			Timeout: envDurationOr("PRICELENS_PIPELINE_TIMEOUT", 60*time.Second),
		},
		Batch: BatchConfig{
			Concurrency: envIntOr("PRICELENS_BATCH_CONCURRENCY", 4),
			MaxURLs:     envIntOr("PRICELENS_BATCH_MAX_URLS", 50),
		},
		Search: SearchConfig{
			Timeout: envDurationOr("PRICELENS_SEARCH_TIMEOUT", 25*time.Second),
			Limit:   envIntOr("PRICELENS_SEARCH_LIMIT", 5),
		},
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
