package mock

import (
	"context"

	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/models"
)

var _ handler.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of handler.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string) (*models.SearchResults, error)
}

func (s *Searcher) Search(ctx context.Context, query string) (*models.SearchResults, error) {
	return s.SearchFn(ctx, query)
}
