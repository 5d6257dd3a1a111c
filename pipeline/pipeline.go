// Package pipeline turns a product URL into exactly one FinalPayload by
// running extraction stages in order until one produces a terminal result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/mirror"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
)

// Fetcher runs the identity profiles against a URL. *engine.Runner
// implements it.
type Fetcher interface {
	Each(ctx context.Context, rawURL string, fn func(engine.Candidate) bool)
}

// Mirror fetches a text rendering of a URL. *mirror.Fetcher implements it.
type Mirror interface {
	Fetch(ctx context.Context, targetURL string) (*mirror.Document, error)
}

const (
	defaultAITimeout     = 20 * time.Second
	defaultExcerptTokens = 400
	maxPriceHints        = 6
)

// Pipeline is safe for concurrent use; each Extract call keeps its own
// state.
type Pipeline struct {
	fetcher       Fetcher
	mirror        Mirror
	providers     []llm.Provider
	weights       Weights
	aiTimeout     time.Duration
	excerptTokens int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMirror enables the mirror stage.
func WithMirror(m Mirror) Option {
	return func(p *Pipeline) { p.mirror = m }
}

// WithProviders sets the completion providers, tried in the given order.
func WithProviders(providers ...llm.Provider) Option {
	return func(p *Pipeline) { p.providers = providers }
}

// WithWeights replaces DefaultWeights.
func WithWeights(w Weights) Option {
	return func(p *Pipeline) { p.weights = w }
}

// WithAITimeout bounds each provider call.
func WithAITimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.aiTimeout = d }
}

// WithExcerptTokens caps the page excerpt sent to providers.
func WithExcerptTokens(n int) Option {
	return func(p *Pipeline) { p.excerptTokens = n }
}

// New creates a Pipeline around fetcher.
func New(fetcher Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:       fetcher,
		weights:       DefaultWeights,
		aiTimeout:     defaultAITimeout,
		excerptTokens: defaultExcerptTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetcher returns the direct fetcher, for callers that fetch other pages
// with the same identity profiles.
func (p *Pipeline) Fetcher() Fetcher {
	return p.fetcher
}

// Providers returns the configured providers in order.
func (p *Pipeline) Providers() []llm.Provider {
	return p.providers
}

// stage returns a terminal payload, or nil to continue.
type stage struct {
	name string
	run  func(ctx context.Context, r *run) *models.FinalPayload
}

func (p *Pipeline) stages() []stage {
	stages := []stage{{name: "direct", run: p.direct}}
	if p.mirror != nil {
		stages = append(stages, stage{name: "mirror", run: p.mirrorStage})
	}
	for _, prov := range p.providers {
		stages = append(stages, stage{name: "ai:" + prov.Name(), run: p.aiStage(prov)})
	}
	return stages
}

// Extract produces the payload for rawURL. It returns an error only when
// rawURL is not an absolute http(s) URL. When ctx ends mid-run the best
// candidate seen so far, or the URL-derived fields, are returned.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*models.FinalPayload, error) {
	target, err := platform.Target(rawURL)
	if err != nil {
		return nil, err
	}

	r := &run{target: target}
	for _, st := range p.stages() {
		if ctx.Err() != nil {
			slog.Warn("extraction interrupted, using best effort",
				"url", target.URL, "before_stage", st.name, "error", ctx.Err())
			return r.bestEffort(), nil
		}

		start := time.Now()
		payload := st.run(ctx, r)
		metrics.StageDuration.WithLabelValues(st.name).Observe(time.Since(start).Seconds())

		if payload != nil {
			metrics.Extractions.WithLabelValues(st.name).Inc()
			slog.Info("extraction finished",
				"url", target.URL,
				"method", payload.ExtractionMethod,
				"price", payload.Price,
			)
			return payload, nil
		}
	}

	if ctx.Err() != nil {
		return r.bestEffort(), nil
	}
	metrics.Extractions.WithLabelValues(models.MethodURLPattern).Inc()
	slog.Info("extraction fell back to url pattern", "url", target.URL, "ai_errors", len(r.aiErrors))
	return r.urlPatternPayload(), nil
}
