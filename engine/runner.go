package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/pricelens/metrics"
)

// Candidate is one profile's response. It is read-only once produced.
type Candidate struct {
	Profile       string
	StatusCode    int
	Body          string
	FinalURL      string
	ContentType   string
	Usable        bool
	LikelyBlocked bool
	Fingerprint   uint64
}

// Success2xx reports whether the response status was 2xx.
func (c Candidate) Success2xx() bool {
	return c.StatusCode >= 200 && c.StatusCode < 300
}

// Runner tries each profile in order, one GET apiece.
type Runner struct {
	profiles     []Profile
	plain        Engine
	chrome       Engine
	timeout      time.Duration
	minContent   int
	largeContent int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProfiles replaces the profile list.
func WithProfiles(profiles []Profile) RunnerOption {
	return func(r *Runner) { r.profiles = profiles }
}

// WithEngines replaces the engines used for plain and Chrome-TLS profiles.
func WithEngines(plain, chrome Engine) RunnerOption {
	return func(r *Runner) {
		r.plain = plain
		r.chrome = chrome
	}
}

// WithTimeout bounds each profile attempt.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithContentThresholds sets the usable and early-exit body sizes.
func WithContentThresholds(min, large int) RunnerOption {
	return func(r *Runner) {
		r.minContent = min
		r.largeContent = large
	}
}

// NewRunner creates a Runner over the default profiles.
func NewRunner(maxRedirects int, opts ...RunnerOption) *Runner {
	r := &Runner{
		profiles:     DefaultProfiles(),
		plain:        NewHTTPEngine(maxRedirects),
		chrome:       NewChromeEngine(maxRedirects),
		timeout:      12 * time.Second,
		minContent:   1000,
		largeContent: 50000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Profiles returns the profile names in the order they are tried.
func (r *Runner) Profiles() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}

// Each fetches rawURL with each profile in order and hands every candidate
// to fn. It stops when fn returns false, when a usable unblocked response
// exceeds the large-content threshold, or when ctx is done. Transport
// failures are logged and skipped.
func (r *Runner) Each(ctx context.Context, rawURL string, fn func(Candidate) bool) {
	for _, p := range r.profiles {
		if ctx.Err() != nil {
			return
		}

		eng := r.plain
		if p.ChromeTLS && r.chrome != nil {
			eng = r.chrome
		}

		res, err := eng.Fetch(ctx, &FetchRequest{URL: rawURL, Headers: p.Headers, Timeout: r.timeout})
		if err != nil {
			slog.Warn("fetch profile failed",
				"url", rawURL,
				"profile", p.Name,
				"engine", eng.Name(),
				"error", err,
			)
			metrics.FetchAttempts.WithLabelValues(p.Name, "error").Inc()
			continue
		}

		c := Candidate{
			Profile:       p.Name,
			StatusCode:    res.StatusCode,
			Body:          res.Body,
			FinalURL:      res.FinalURL,
			ContentType:   res.ContentType,
			Usable:        len(res.Body) > r.minContent,
			LikelyBlocked: IsLikelyBlocked(res.StatusCode, res.Body),
			Fingerprint:   PageFingerprint(res.Body),
		}
		metrics.FetchAttempts.WithLabelValues(p.Name, outcome(c)).Inc()
		slog.Debug("fetch profile response",
			"url", rawURL,
			"profile", p.Name,
			"status", c.StatusCode,
			"bytes", len(c.Body),
			"blocked", c.LikelyBlocked,
		)

		if !fn(c) {
			return
		}
		if c.Usable && !c.LikelyBlocked && len(c.Body) > r.largeContent {
			return
		}
	}
}

// Run collects every candidate Each would produce.
func (r *Runner) Run(ctx context.Context, rawURL string) []Candidate {
	var out []Candidate
	r.Each(ctx, rawURL, func(c Candidate) bool {
		out = append(out, c)
		return true
	})
	return out
}

func outcome(c Candidate) string {
	switch {
	case c.LikelyBlocked:
		return "blocked"
	case c.Usable:
		return "usable"
	default:
		return "unusable"
	}
}
