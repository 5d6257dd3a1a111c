package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/use-agent/pricelens/cleaner"
	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/mirror"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/urlpattern"
)

// direct extracts and scores each fetch candidate in order. It stops at
// the first candidate over the success bar; otherwise an unavailable best
// candidate is terminal.
func (p *Pipeline) direct(ctx context.Context, r *run) *models.FinalPayload {
	var hit *models.FinalPayload

	p.fetcher.Each(ctx, r.target.URL, func(c engine.Candidate) bool {
		if c.LikelyBlocked {
			r.blocked = true
			if r.sameChallenge(c.Fingerprint) {
				slog.Debug("skipping repeated challenge page", "url", r.target.URL, "profile", c.Profile)
				return true
			}
			r.challenges = append(r.challenges, c.Fingerprint)
		}

		fields := extractor.Extract(c.Body, r.target)
		sc := ScoredCandidate{
			Fields:        fields,
			Score:         Score(p.weights, fields, c),
			Profile:       c.Profile,
			StatusCode:    c.StatusCode,
			LikelyBlocked: c.LikelyBlocked,
		}
		r.consider(sc, c)
		slog.Debug("candidate scored",
			"url", r.target.URL,
			"profile", c.Profile,
			"score", sc.Score,
			"price", fields.Price,
		)

		if reachesSuccessBar(fields) {
			hit = r.finish(fields, models.MethodHTMLPrefix+c.Profile)
			return false
		}
		return true
	})

	if hit != nil {
		return hit
	}
	if r.best != nil && isUnavailableResult(r.best.Fields) {
		return r.finish(r.best.Fields, models.MethodHTMLPrefix+r.best.Profile)
	}
	return nil
}

// mirrorStage asks the text mirror for the page and applies the same
// success and unavailable bars as the direct stage.
func (p *Pipeline) mirrorStage(ctx context.Context, r *run) *models.FinalPayload {
	doc, err := p.mirror.Fetch(ctx, r.target.URL)
	if err != nil {
		if errors.Is(err, mirror.ErrBlocked) {
			r.blocked = true
		}
		slog.Warn("mirror fetch failed", "url", r.target.URL, "error", err)
		return nil
	}
	if doc.Blocked {
		r.blocked = true
		slog.Warn("mirror returned a blocked page", "url", r.target.URL)
		return nil
	}

	fields := mirror.Parse(doc.Text, r.target.URL)
	r.mirrorText = doc.Text
	r.mirrorFields = &fields

	if reachesSuccessBar(fields) || isUnavailableResult(fields) {
		return r.finish(fields, models.MethodMirror)
	}
	return nil
}

// aiStage wraps one provider. A failure is recorded as a reason and the
// pipeline moves on.
func (p *Pipeline) aiStage(prov llm.Provider) func(context.Context, *run) *models.FinalPayload {
	return func(ctx context.Context, r *run) *models.FinalPayload {
		if p.aiTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.aiTimeout)
			defer cancel()
		}

		completion, err := llm.Infer(ctx, prov, r.target.URL, p.hintsFor(r))
		if err != nil {
			reason := llm.Reason(prov.Name(), err)
			r.aiErrors = append(r.aiErrors, reason)
			metrics.ProviderFailures.WithLabelValues(prov.Name(), models.ErrorCode(err)).Inc()
			slog.Warn("completion provider failed",
				"url", r.target.URL,
				"provider", prov.Name(),
				"reason", reason,
				"error", err,
			)
			return nil
		}

		payload := r.finish(completionFields(completion, r.target), models.MethodAIPrefix+prov.Name())
		payload.AIExtracted = true
		if r.target.Platform == models.PlatformGeneric && completion.Platform != "" {
			payload.Platform = completion.Platform
		}
		return payload
	}
}

// hintsFor gathers what earlier stages learned. It runs once per run.
func (p *Pipeline) hintsFor(r *run) llm.Hints {
	if r.hints != nil {
		return *r.hints
	}

	var h llm.Hints
	if r.best != nil {
		f := r.best.Fields
		h.Title = cleanTitle(f.Title)
		h.Brand = f.Brand
		h.Category = f.Category
		h.Availability = f.AvailabilityText
	}
	if h.Title == "" && r.mirrorFields != nil {
		h.Title = cleanTitle(r.mirrorFields.Title)
	}

	switch {
	case r.page != "":
		h.Prices = extractor.PriceHints(extractor.PageText(r.page), maxPriceHints)
		h.Excerpt = cleaner.Excerpt(r.page, r.target.URL, p.excerptTokens)
	case r.mirrorText != "":
		h.Prices = extractor.PriceHints(r.mirrorText, maxPriceHints)
		h.Excerpt = cleaner.TruncateTokens(r.mirrorText, p.excerptTokens)
	}

	r.hints = &h
	return h
}

// completionFields normalizes a provider answer the same way page fields
// are normalized.
func completionFields(c *llm.Completion, target models.ExtractionTarget) models.ExtractedFields {
	title := c.Title
	if title == "" {
		title = urlpattern.UnknownTitle
	}
	currency := c.Currency
	if !isISOCurrency(currency) {
		currency = extractor.DetectCurrency("", target.URL)
	}
	return models.ExtractedFields{
		Title:    title,
		Price:    float64(c.Price),
		Currency: currency,
		Brand:    extractor.CleanBrand(c.Brand),
		Category: extractor.DetectCategory(title, c.Category),
		Image:    extractor.ResolveImage(c.Image, target.URL),
	}
}

func isISOCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
