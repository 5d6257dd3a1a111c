package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/models"
	"github.com/use-agent/pricelens/platform"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Extractor handler.Extractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log pipeline progress to stderr"`

	Extract  ExtractCmd  `cmd:"" help:"Extract product data from a URL"`
	Platform PlatformCmd `cmd:"" help:"Print the platform tag for a URL"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string        `arg:"" help:"Product page URL"`
	Timeout time.Duration `short:"t" default:"60s" help:"Overall extraction deadline"`
	Pretty  bool          `short:"p" help:"Indent the JSON output"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	payload, err := deps.Extractor.Extract(ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

// PlatformCmd is the "platform" subcommand.
type PlatformCmd struct {
	URL string `arg:"" help:"Product page URL"`
}

// Run executes the platform command.
func (c *PlatformCmd) Run(deps *Dependencies) error {
	target, err := platform.Target(c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, target.Platform)
	return nil
}

func errorMessage(err error) string {
	if se, ok := err.(*models.ScrapeError); ok {
		return se.Message
	}
	return err.Error()
}
