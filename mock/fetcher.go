package mock

import (
	"context"

	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/pipeline"
	"github.com/use-agent/pricelens/search"
)

var (
	_ pipeline.Fetcher = (*Fetcher)(nil)
	_ search.Fetcher   = (*Fetcher)(nil)
)

// Fetcher is a mock implementation of pipeline.Fetcher and search.Fetcher.
type Fetcher struct {
	EachFn func(ctx context.Context, rawURL string, fn func(engine.Candidate) bool)
}

func (f *Fetcher) Each(ctx context.Context, rawURL string, fn func(engine.Candidate) bool) {
	f.EachFn(ctx, rawURL, fn)
}

// Candidates returns a Fetcher that yields cs in order, honoring early
// stops, and counts how many were handed out.
func Candidates(yielded *int, cs ...engine.Candidate) *Fetcher {
	return &Fetcher{
		EachFn: func(ctx context.Context, _ string, fn func(engine.Candidate) bool) {
			for _, c := range cs {
				if ctx.Err() != nil {
					return
				}
				if yielded != nil {
					*yielded++
				}
				if !fn(c) {
					return
				}
			}
		},
	}
}
