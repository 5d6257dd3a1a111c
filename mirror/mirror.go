// Package mirror retrieves a text rendering of a page from a reader-mode
// proxy and pulls product fields out of it with line patterns.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/use-agent/pricelens/cleaner"
	"github.com/use-agent/pricelens/engine"
	"github.com/use-agent/pricelens/models"
)

// maxBodyBytes caps how much of the mirror response is read.
const maxBodyBytes = 5 << 20

// ErrBlocked marks a mirror response of 403 or 429.
var ErrBlocked = errors.New("mirror refused the request")

// Document is the mirror's rendering of a target page.
type Document struct {
	Text       string
	StatusCode int
	// Blocked is set when the rendered text itself is an anti-bot wall.
	Blocked bool
}

// Fetcher requests <baseURL><target URL> from the mirror service.
type Fetcher struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// New creates a Fetcher. A zero timeout means no per-request bound beyond
// the caller's context.
func New(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{Transport: &http.Transport{Proxy: http.ProxyFromEnvironment}},
	}
}

// Fetch issues one GET to the mirror. Status 400 and above is an error;
// 403 and 429 wrap ErrBlocked. HTML bodies are converted to Markdown.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Document, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+targetURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMirrorFailed, "build request", err)
	}
	req.Header.Set("Accept", "text/plain, text/markdown;q=0.9, text/html;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMirrorFailed, "do request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeMirrorFailed, "read body", err)
	}

	if resp.StatusCode >= 400 {
		var cause error
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			cause = ErrBlocked
		}
		return nil, models.NewScrapeError(models.ErrCodeMirrorFailed,
			fmt.Sprintf("mirror returned %d", resp.StatusCode), cause)
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), text) {
		md, err := cleaner.ToMarkdown(text, targetURL)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeMirrorFailed, "convert html", err)
		}
		text = md
	}

	return &Document{
		Text:       text,
		StatusCode: resp.StatusCode,
		Blocked:    engine.IsLikelyBlocked(resp.StatusCode, text),
	}, nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
