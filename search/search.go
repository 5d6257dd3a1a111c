// Package search looks a product name up on each supported storefront's
// search page and compares the priced results.
package search

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/models"
	"golang.org/x/sync/errgroup"
)

// MinQueryLen is the shortest trimmed query accepted.
const MinQueryLen = 2

// DefaultLimit caps the results kept per platform.
const DefaultLimit = 5

// Fetcher yields fetch candidates for a URL in profile order.
// *engine.Runner implements it.
type Fetcher interface {
	Each(ctx context.Context, rawURL string, fn func(engine.Candidate) bool)
}

// Searcher fans a query out to every storefront concurrently.
type Searcher struct {
	fetcher Fetcher
	limit   int
	timeout time.Duration
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLimit caps the results kept per platform.
func WithLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithTimeout bounds each platform's fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) { s.timeout = d }
}

// New creates a Searcher that fetches result pages through fetcher.
func New(fetcher Fetcher, opts ...Option) *Searcher {
	s := &Searcher{fetcher: fetcher, limit: DefaultLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries every storefront. A platform that fails or is blocked
// contributes an empty list; only an invalid query is an error.
func (s *Searcher) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	query = strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(query) < MinQueryLen {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "query must be at least 2 characters", nil)
	}

	slog.Info("multi-platform search started", "query", query)

	lists := make([][]models.SearchResult, len(storefronts))
	var g errgroup.Group
	for i, sf := range storefronts {
		g.Go(func() error {
			lists[i] = s.searchOne(ctx, sf, query)
			return nil
		})
	}
	_ = g.Wait()

	out := &models.SearchResults{
		Query:   query,
		Results: make(map[string][]models.SearchResult, len(storefronts)),
	}
	for i, sf := range storefronts {
		list := lists[i]
		if list == nil {
			list = []models.SearchResult{}
		}
		out.Results[sf.key] = list
		for j := range list {
			r := &list[j]
			if r.IsSearchLink || r.Price <= 0 {
				continue
			}
			out.TotalResults++
			if out.BestDeal == nil || r.Price < out.BestDeal.Price {
				best := *r
				out.BestDeal = &best
			}
		}
	}

	slog.Info("multi-platform search complete",
		"query", query,
		"amazon", len(out.Results["amazon"]),
		"flipkart", len(out.Results["flipkart"]),
		"myntra", len(out.Results["myntra"]),
		"total", out.TotalResults,
	)
	return out, nil
}

func (s *Searcher) searchOne(ctx context.Context, sf storefront, query string) []models.SearchResult {
	if sf.parse == nil {
		metrics.SearchResults.WithLabelValues(sf.key, "link").Inc()
		return []models.SearchResult{searchLink(sf, query)}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	searchURL := sf.searchURL(query)
	var results []models.SearchResult
	s.fetcher.Each(ctx, searchURL, func(c engine.Candidate) bool {
		if c.LikelyBlocked || !c.Success2xx() {
			return true
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.Body))
		if err != nil {
			return true
		}
		results = sf.parse(doc, sf.base, s.limit)
		return len(results) == 0
	})

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
		slog.Warn("platform search returned nothing", "platform", sf.key, "url", searchURL)
	}
	metrics.SearchResults.WithLabelValues(sf.key, outcome).Inc()
	return results
}
