package pipeline

import (
	"net/http"

	"github.com/use-agent/pricelens/config"
	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/mirror"
)

// FromConfig assembles the production pipeline: the profile runner, the
// mirror when enabled, then OpenAI and Gemini in that order.
func FromConfig(cfg *config.Config) *Pipeline {
	runner := engine.NewRunner(cfg.Fetch.MaxRedirects,
		engine.WithProfiles(engine.ProfilesByName(cfg.Fetch.Profiles)),
		engine.WithTimeout(cfg.Fetch.Timeout),
		engine.WithContentThresholds(cfg.Fetch.MinContentLength, cfg.Fetch.LargeContentLength),
	)

	opts := []Option{
		WithAITimeout(cfg.AI.Timeout),
		WithProviders(
			llm.NewOpenAI(&http.Client{}, cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIBaseURL),
			llm.NewGemini(cfg.AI.GeminiKey, cfg.AI.GeminiModel),
		),
	}
	if cfg.Mirror.Enabled && cfg.Mirror.BaseURL != "" {
		opts = append(opts, WithMirror(mirror.New(cfg.Mirror.BaseURL, cfg.Mirror.Timeout)))
	}
	return New(runner, opts...)
}
