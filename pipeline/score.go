package pipeline

import (
	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/extractor"
	"github.com/use-agent/pricelens/models"
)

// Weights are the additive terms of Score. Blocked and NonSuccess are
// subtracted.
type Weights struct {
	CleanTitle  int
	Brand       int
	Category    int
	Image       int
	Price       int
	Unavailable int
	Blocked     int
	NonSuccess  int
}

// DefaultWeights make a positive price dominate every other signal.
var DefaultWeights = Weights{
	CleanTitle:  20,
	Brand:       5,
	Category:    3,
	Image:       5,
	Price:       50,
	Unavailable: 15,
	Blocked:     30,
	NonSuccess:  10,
}

// ScoredCandidate pairs fields extracted from one fetch with their score.
type ScoredCandidate struct {
	Fields        models.ExtractedFields
	Score         int
	Profile       string
	StatusCode    int
	LikelyBlocked bool
}

// Score rates fields extracted from candidate c.
func Score(w Weights, f models.ExtractedFields, c engine.Candidate) int {
	score := 0
	if !extractor.IsJunkTitle(f.Title) {
		score += w.CleanTitle
	}
	if f.Brand != "" {
		score += w.Brand
	}
	if f.Category != "" {
		score += w.Category
	}
	if f.Image != "" {
		score += w.Image
	}
	if f.HasPrice() {
		score += w.Price
	}
	if f.Unavailable {
		score += w.Unavailable
	}
	if c.LikelyBlocked {
		score -= w.Blocked
	}
	if !c.Success2xx() {
		score -= w.NonSuccess
	}
	return score
}

// reachesSuccessBar reports whether f can end the pipeline as a clean
// success: a positive price under a non-junk title.
func reachesSuccessBar(f models.ExtractedFields) bool {
	return f.HasPrice() && !extractor.IsJunkTitle(f.Title)
}

// isUnavailableResult reports whether f is a usable out-of-stock result.
func isUnavailableResult(f models.ExtractedFields) bool {
	return f.Unavailable && !extractor.IsJunkTitle(f.Title)
}
