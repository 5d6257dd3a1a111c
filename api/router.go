package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricelens/api/handler"
	"github.com/use-agent/pricelens/api/middleware"
	"github.com/use-agent/pricelens/config"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/metrics"
	"github.com/use-agent/pricelens/webhook"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Service   *handler.Service
	Providers []llm.Provider
	// CacheBackend names the payload cache for health; empty when disabled.
	CacheBackend string
	Webhooks     *webhook.Sender
	// Searcher serves POST /search; the route is absent when nil.
	Searcher  handler.Searcher
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so probes and scrapers always work.
//
// The caller sets the gin mode before building the router.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Providers, deps.CacheBackend, deps.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/extract", handler.Extract(deps.Service))

	batch := handler.NewBatch(deps.Service, cfg.Batch, deps.Webhooks)
	protected.POST("/batch/extract", batch.Post())
	protected.GET("/batch/:id", handler.GetBatch())

	if deps.Searcher != nil {
		protected.POST("/search", handler.Search(deps.Searcher))
	}

	return r
}
