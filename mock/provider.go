package mock

import (
	"context"

	"github.com/use-agent/pricelens/llm"
)

var _ llm.Provider = (*Provider)(nil)

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	NameValue  string
	Unset      bool
	CompleteFn func(ctx context.Context, system, user string) (string, error)
}

func (p *Provider) Name() string     { return p.NameValue }
func (p *Provider) Configured() bool { return !p.Unset }

func (p *Provider) Complete(ctx context.Context, system, user string) (string, error) {
	return p.CompleteFn(ctx, system, user)
}
