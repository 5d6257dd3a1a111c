// Package llm asks external completion providers to infer product fields
// when markup-based extraction has failed.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/use-agent/pricelens/models"
)

// Provider is one completion backend. Complete returns the raw model text
// for a system/user prompt pair.
type Provider interface {
	Name() string
	Configured() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Completion is the fixed schema providers are asked to answer with.
// Price is 0 when the provider returned null or nothing usable.
type Completion struct {
	Title    string `json:"title"`
	Price    Price  `json:"price"`
	Currency string `json:"currency"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Image    string `json:"image"`
	Platform string `json:"platform"`
}

// Infer runs one provider against a target. It fails with a ScrapeError
// when the provider is unconfigured, errors, returns empty or invalid
// JSON, or returns neither a title nor a positive price.
func Infer(ctx context.Context, p Provider, targetURL string, h Hints) (*Completion, error) {
	if !p.Configured() {
		return nil, models.NewScrapeError(models.ErrCodeLLMUnconfigured, p.Name()+" is not configured", nil)
	}

	raw, err := p.Complete(ctx, SystemPrompt, BuildPrompt(targetURL, h))
	if err != nil {
		return nil, err
	}

	c, err := ParseCompletion(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Title) == "" && c.Price <= 0 {
		return nil, models.NewScrapeError(models.ErrCodeLLMNoData, p.Name()+" returned no title or price", nil)
	}
	return c, nil
}

var providerLabels = map[string]string{
	"openai": "OpenAI",
	"gemini": "Gemini",
}

// Reason turns a provider failure into the short phrase recorded in a
// payload's aiErrors, e.g. "OpenAI rate limit or quota exceeded".
func Reason(provider string, err error) string {
	label, ok := providerLabels[provider]
	if !ok {
		label = provider
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return label + " request timed out"
	}
	switch models.ErrorCode(err) {
	case models.ErrCodeLLMUnconfigured:
		return label + " API key not configured"
	case models.ErrCodeLLMRateLimited:
		return label + " rate limit or quota exceeded"
	case models.ErrCodeLLMAuthFailure:
		return label + " authentication failed"
	case models.ErrCodeLLMEmpty:
		return label + " returned an empty response"
	case models.ErrCodeLLMInvalidJSON:
		return label + " returned invalid JSON"
	case models.ErrCodeLLMNoData:
		return label + " found no product data"
	default:
		return label + " request failed"
	}
}
