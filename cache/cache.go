package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/models"
)

// Store keeps finished payloads keyed by Key. Implementations are safe for
// concurrent use. A failing backend reports a miss rather than an error.
type Store interface {
	// Get returns a payload stored less than maxAge ago.
	Get(ctx context.Context, key string, maxAge time.Duration) (*models.FinalPayload, bool)
	Set(ctx context.Context, key string, payload *models.FinalPayload)
	// Backend names the store for the health endpoint.
	Backend() string
}

// Key generates a cache key from a product URL. Surrounding whitespace and
// the fragment do not change the key.
func Key(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	sum := sha256.Sum256([]byte(u))
	return "pricelens:payload:" + hex.EncodeToString(sum[:])
}

// Cacheable reports whether a payload is worth serving again: a priced
// result from a page fetch, the mirror, or a provider.
func Cacheable(p *models.FinalPayload) bool {
	return p != nil && p.HasPrice() && !p.URLExtracted
}

// entry holds a cached payload with its creation timestamp.
type entry struct {
	payload   *models.FinalPayload
	createdAt time.Time
}

// Memory is an in-process Store.
type Memory struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemory creates a Memory store with the given capacity. A background
// goroutine evicts entries older than ttl every 5 minutes until Close.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Memory{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop(5 * time.Minute)
	return c
}

// Get retrieves a payload younger than maxAge. maxAge <= 0 disables lookup.
func (c *Memory) Get(_ context.Context, key string, maxAge time.Duration) (*models.FinalPayload, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > maxAge || time.Since(e.createdAt) > c.ttl {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	cp := *e.payload
	return &cp, true
}

// Set stores a payload. If the store is at capacity, a random entry is
// evicted to make room.
func (c *Memory) Set(_ context.Context, key string, payload *models.FinalPayload) {
	if payload == nil {
		return
	}
	cp := *payload

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		// Map iteration order is random.
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		payload:   &cp,
		createdAt: time.Now(),
	}
}

// Backend implements Store.
func (c *Memory) Backend() string { return "memory" }

// Len returns the number of stored entries.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *Memory) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Memory) evictExpired() {
	cutoff := time.Now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}

var _ Store = (*Memory)(nil)
