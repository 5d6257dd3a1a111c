package mock

import (
	"context"

	"github.com/use-agent/pricelens/mirror"
	"github.com/use-agent/pricelens/pipeline"
)

var _ pipeline.Mirror = (*Mirror)(nil)

// Mirror is a mock implementation of pipeline.Mirror.
type Mirror struct {
	FetchFn func(ctx context.Context, targetURL string) (*mirror.Document, error)
}

func (m *Mirror) Fetch(ctx context.Context, targetURL string) (*mirror.Document, error) {
	return m.FetchFn(ctx, targetURL)
}
