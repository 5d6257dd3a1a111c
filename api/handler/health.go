package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pricelens/llm"
	"github.com/use-agent/pricelens/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when no completion provider is configured, since the
// pipeline then has no fallback after the mirror.
func Health(providers []llm.Provider, cacheBackend string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		configured := make(map[string]bool, len(providers))
		anyReady := false
		for _, p := range providers {
			configured[p.Name()] = p.Configured()
			anyReady = anyReady || p.Configured()
		}

		status := "healthy"
		if !anyReady {
			status = "degraded"
		}
		if cacheBackend == "" {
			cacheBackend = "disabled"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Providers: configured,
			Cache:     cacheBackend,
			Version:   Version,
		})
	}
}
