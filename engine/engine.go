package engine

import (
	"context"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "http-chrome").
	Name() string

	// Fetch performs one GET for the given request. Any status below 500
	// is a result; transport failures and 5xx are errors.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of a fetch that produced a response.
type FetchResult struct {
	Body        string
	StatusCode  int
	FinalURL    string
	ContentType string
	EngineName  string
}
