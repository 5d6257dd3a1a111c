package mock

import (
	"context"

	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/models"
)

var _ handler.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of handler.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, rawURL string) (*models.FinalPayload, error)
}

func (e *Extractor) Extract(ctx context.Context, rawURL string) (*models.FinalPayload, error) {
	return e.ExtractFn(ctx, rawURL)
}
