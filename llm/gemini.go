package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/use-agent/pricelens/models"
	"google.golang.org/genai"
)

// Gemini completes prompts with the Gemini API through the genai SDK. The
// SDK client is created lazily on first use and reused.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	once    sync.Once
	client  *genai.Client
	initErr error
}

// GeminiOption configures a Gemini provider.
type GeminiOption func(*Gemini)

// WithGeminiEndpoint points the SDK at another API root and HTTP client.
func WithGeminiEndpoint(baseURL string, httpClient *http.Client) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = baseURL
		g.httpClient = httpClient
	}
}

// NewGemini creates a provider for model using apiKey.
func NewGemini(apiKey, model string, opts ...GeminiOption) *Gemini {
	g := &Gemini{apiKey: apiKey, model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) Name() string     { return "gemini" }
func (g *Gemini) Configured() bool { return g.apiKey != "" }

func (g *Gemini) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      g.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  g.httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
		})
	})
	return g.client, g.initErr
}

// Complete asks for a JSON answer and returns the response text.
func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, "create gemini client", err)
	}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: user}}}}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", models.NewScrapeError(models.ErrCodeLLMEmpty, "gemini returned no content", nil)
	}
	return text, nil
}

// classifyGeminiError maps SDK API errors onto the same codes as
// classifyLLMError.
func classifyGeminiError(err error) *models.ScrapeError {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return models.NewScrapeError(models.ErrCodeLLMFailure, "gemini request failed", err)
	}
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, apiErr.Message, err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return models.NewScrapeError(models.ErrCodeLLMRateLimited, apiErr.Message, err)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key not valid"):
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, apiErr.Message, err)
	default:
		return models.NewScrapeError(models.ErrCodeLLMFailure, apiErr.Message, err)
	}
}
