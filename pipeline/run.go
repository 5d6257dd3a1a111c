package pipeline

import (
	"strings"

	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
	"github.com/use-agent/pricelens/urlpattern"
)

// run is the state of one Extract call.
type run struct {
	target models.ExtractionTarget

	best *ScoredCandidate
	// page is the body of the best-scoring unblocked candidate.
	page      string
	pageScore int
	// challenges holds fingerprints of blocked candidates. Unblocked pages
	// are always extracted: a priced page can differ from a price-less one
	// by a single text node.
	challenges []uint64

	mirrorText   string
	mirrorFields *models.ExtractedFields

	blocked  bool
	aiErrors []string

	// hints are built on first use and shared by every provider.
	hints *llm.Hints
}

func (r *run) consider(sc ScoredCandidate, c engine.Candidate) {
	if r.best == nil || sc.Score > r.best.Score {
		r.best = &sc
	}
	if !c.LikelyBlocked && (r.page == "" || sc.Score > r.pageScore) {
		r.page = c.Body
		r.pageScore = sc.Score
	}
}

func (r *run) sameChallenge(fp uint64) bool {
	for _, e := range r.challenges {
		if engine.NearDuplicate(e, fp) {
			return true
		}
	}
	return false
}

func (r *run) signals(f models.ExtractedFields) Signals {
	unavailable := f.Unavailable ||
		(r.best != nil && r.best.Fields.Unavailable) ||
		(r.mirrorFields != nil && r.mirrorFields.Unavailable)
	return Signals{Blocked: r.blocked, Unavailable: unavailable, AIErrors: r.aiErrors}
}

// finish builds the terminal payload. Price-less payloads get a note.
func (r *run) finish(f models.ExtractedFields, method string) *models.FinalPayload {
	payload := &models.FinalPayload{
		ExtractedFields:  f,
		Platform:         platform.DisplayName(r.target.Platform),
		URL:              r.target.URL,
		ExtractionMethod: method,
		AIErrors:         append([]string{}, r.aiErrors...),
	}
	if !f.HasPrice() {
		payload.ExtractionNote = Summarize(r.signals(f))
	}
	return payload
}

func (r *run) urlPatternPayload() *models.FinalPayload {
	payload := r.finish(urlpattern.Extract(r.target), models.MethodURLPattern)
	payload.URLExtracted = true
	return payload
}

// bestEffort is used when the caller's deadline cut the run short.
func (r *run) bestEffort() *models.FinalPayload {
	metrics.Extractions.WithLabelValues("best-effort").Inc()
	if r.best != nil && !extractor.IsJunkTitle(r.best.Fields.Title) {
		return r.finish(r.best.Fields, models.MethodHTMLPrefix+r.best.Profile)
	}
	if r.mirrorFields != nil && !extractor.IsJunkTitle(r.mirrorFields.Title) {
		return r.finish(*r.mirrorFields, models.MethodMirror)
	}
	return r.urlPatternPayload()
}

func cleanTitle(title string) string {
	if extractor.IsJunkTitle(title) {
		return ""
	}
	return strings.TrimSpace(title)
}
