package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PRICELENS_FETCH_TIMEOUT", "")
	t.Setenv("PRICELENS_FETCH_PROFILES", "")
	t.Setenv("PRICELENS_MIRROR_URL", "")

	cfg := Load()

	assert.Equal(t, 12*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 5, cfg.Fetch.MaxRedirects)
	assert.Equal(t, 1000, cfg.Fetch.MinContentLength)
	assert.Equal(t, 50000, cfg.Fetch.LargeContentLength)
	assert.Equal(t, []string{"crawler", "desktop", "mobile", "minimal"}, cfg.Fetch.Profiles)
	assert.Equal(t, "https://r.jina.ai/", cfg.Mirror.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAIModel)
	assert.Equal(t, 25*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 5, cfg.Search.Limit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PRICELENS_FETCH_TIMEOUT", "3s")
	t.Setenv("PRICELENS_FETCH_PROFILES", "desktop, minimal ,")
	t.Setenv("PRICELENS_AUTH_ENABLED", "false")
	t.Setenv("PRICELENS_RATE_RPS", "7.5")
	t.Setenv("PRICELENS_OPENAI_API_KEY", "sk-test")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, []string{"desktop", "minimal"}, cfg.Fetch.Profiles)
	assert.False(t, cfg.Auth.Enabled)
	assert.InDelta(t, 7.5, cfg.RateLimit.RequestsPerSecond, 0.001)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIKey)
}

func TestEnvHelpers_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("PRICELENS_X_INT", "abc")
	t.Setenv("PRICELENS_X_DUR", "soon")
	t.Setenv("PRICELENS_X_BOOL", "maybe")

	assert.Equal(t, 9, envIntOr("PRICELENS_X_INT", 9))
	assert.Equal(t, time.Minute, envDurationOr("PRICELENS_X_DUR", time.Minute))
	assert.True(t, envBoolOr("PRICELENS_X_BOOL", true))
}
